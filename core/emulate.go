package core

import (
	"sort"
	"strings"
)

// EmulateDirectories turns the entries of a flat prefix listing into a
// filesystem-shaped listing of root.
//
// A directory entry is synthesized for every ancestor between root and each
// entry that is not a direct child. Entries the listing already reported win
// over synthesized ones with the same path. Non-recursive listings keep only
// direct children of root and are ordered lexically by path. Recursive
// listings are ordered segment by segment so every directory precedes the
// entries reachable through it. Root itself and entries outside root are
// dropped.
//
// EmulateDirectories does no I/O and never modifies entries.
func EmulateDirectories(entries []Entry, root string, recursive bool) []Entry {
	root = cleanEntryPath(root)
	rootDepth := Depth(root)

	byPath := make(map[string]Entry, len(entries))
	var descendants []string
	for _, e := range entries {
		p := cleanEntryPath(e.Path)
		if !isDescendant(p, root) {
			continue
		}
		if _, seen := byPath[p]; seen {
			continue
		}
		byPath[p] = e
		descendants = append(descendants, p)
	}

	for _, p := range descendants {
		for parent := Dirname(p); Depth(parent) > rootDepth; parent = Dirname(parent) {
			if _, ok := byPath[parent]; ok {
				continue
			}
			byPath[parent] = NewDirEntry(parent)
		}
	}

	out := make([]Entry, 0, len(byPath))
	for p, e := range byPath {
		if !recursive && Depth(p) != rootDepth+1 {
			continue
		}
		out = append(out, e)
	}

	if recursive {
		sort.Slice(out, func(i, j int) bool {
			return comparePathSegments(cleanEntryPath(out[i].Path), cleanEntryPath(out[j].Path)) < 0
		})
	} else {
		sort.Slice(out, func(i, j int) bool {
			return cleanEntryPath(out[i].Path) < cleanEntryPath(out[j].Path)
		})
	}

	return out
}

// isDescendant reports whether p lies strictly below root.
func isDescendant(p, root string) bool {
	if p == "" || p == root {
		return false
	}
	if root == "" {
		return true
	}
	return strings.HasPrefix(p, root+Separator)
}
