package core

import "strings"

// Prefixer namespaces every path under a fixed root so an adapter can be
// mounted on a sub-tree of its medium without callers knowing where.
//
// The zero value has an empty root and passes paths through untouched apart
// from separator normalization. Prefixer does no I/O.
type Prefixer struct {
	prefix string
}

// NewPrefixer returns a Prefixer rooted at root.
func NewPrefixer(root string) *Prefixer {
	p := &Prefixer{}
	p.SetPrefix(root)
	return p
}

// SetPrefix replaces the namespace root. A non-empty root is stored with a
// single trailing separator and no leading one; "." and "/" mean no root.
func (p *Prefixer) SetPrefix(root string) {
	root = collapseSeparators(strings.ReplaceAll(root, "\\", Separator))
	root = strings.Trim(root, Separator)
	if root == "" || root == "." {
		p.prefix = ""
		return
	}
	p.prefix = root + Separator
}

// Prefix returns the configured root, with its trailing separator.
func (p *Prefixer) Prefix() string {
	return p.prefix
}

// Apply joins the root with path. Duplicate separators are collapsed and the
// leading separator is stripped so object stores receive valid keys. A
// trailing separator on path is preserved.
//
//	NewPrefixer("uploads").Apply("a//b.txt") // "uploads/a/b.txt"
//	NewPrefixer("uploads").Apply("a/")       // "uploads/a/"
func (p *Prefixer) Apply(path string) string {
	joined := collapseSeparators(p.prefix + path)
	return strings.TrimLeft(joined, Separator)
}

// Remove strips the root from an absolute path or key. It is the exact left
// inverse of Apply. Inputs that do not start with the root are returned
// unchanged.
func (p *Prefixer) Remove(absolute string) string {
	if p.prefix == "" {
		return absolute
	}
	if absolute+Separator == p.prefix {
		return ""
	}
	return strings.TrimPrefix(absolute, p.prefix)
}

func collapseSeparators(s string) string {
	for strings.Contains(s, "//") {
		s = strings.ReplaceAll(s, "//", Separator)
	}
	return s
}
