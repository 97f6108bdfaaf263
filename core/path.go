package core

import "strings"

// Separator is the path separator used by every adapter, independent of the
// host operating system.
const Separator = "/"

// PathInfo holds the parts of a path derived purely from its string form.
type PathInfo struct {
	Dirname   string
	Basename  string
	Filename  string
	Extension string
}

// SplitPath derives the dirname, basename, filename and extension of p.
//
//	SplitPath("a/b/c.tar.gz") // {Dirname: "a/b", Basename: "c.tar.gz", Filename: "c.tar", Extension: "gz"}
//	SplitPath("README")       // {Basename: "README", Filename: "README"}
func SplitPath(p string) PathInfo {
	p = cleanEntryPath(p)

	var info PathInfo
	info.Basename = p
	if i := strings.LastIndex(p, Separator); i >= 0 {
		info.Dirname = p[:i]
		info.Basename = p[i+1:]
	}

	info.Filename = info.Basename
	if i := strings.LastIndex(info.Basename, "."); i >= 0 {
		info.Extension = info.Basename[i+1:]
		info.Filename = info.Basename[:i]
	}

	return info
}

// Dirname returns the parent of p, or "" for top-level paths.
func Dirname(p string) string {
	return SplitPath(p).Dirname
}

// Depth returns the number of segments in p. The root ("") has depth 0.
func Depth(p string) int {
	p = cleanEntryPath(p)
	if p == "" {
		return 0
	}
	return strings.Count(p, Separator) + 1
}

// IsDirPath reports whether p uses the trailing-separator directory convention.
func IsDirPath(p string) bool {
	return strings.HasSuffix(p, Separator)
}

// EnsureTrailingSeparator returns p with exactly one trailing separator.
// The empty path stays empty so that it keeps denoting the root.
func EnsureTrailingSeparator(p string) string {
	p = strings.TrimRight(p, Separator)
	if p == "" {
		return ""
	}
	return p + Separator
}

// cleanEntryPath strips leading and trailing separators.
func cleanEntryPath(p string) string {
	return strings.Trim(p, Separator)
}

// comparePathSegments orders paths segment by segment, so an ancestor always
// sorts before every path reachable through it.
func comparePathSegments(a, b string) int {
	as := strings.Split(a, Separator)
	bs := strings.Split(b, Separator)
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := strings.Compare(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return len(as) - len(bs)
}
