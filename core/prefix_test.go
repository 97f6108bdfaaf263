package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmgilman/go/storage/core"
)

func TestPrefixer_SetPrefix(t *testing.T) {
	tests := []struct {
		root string
		want string
	}{
		{"", ""},
		{"/", ""},
		{".", ""},
		{"uploads", "uploads/"},
		{"/uploads/", "uploads/"},
		{"a//b", "a/b/"},
		{`a\b`, "a/b/"},
	}

	for _, tt := range tests {
		t.Run(tt.root, func(t *testing.T) {
			assert.Equal(t, tt.want, core.NewPrefixer(tt.root).Prefix())
		})
	}
}

func TestPrefixer_Apply(t *testing.T) {
	tests := []struct {
		name string
		root string
		path string
		want string
	}{
		{"no root", "", "a/b.txt", "a/b.txt"},
		{"no root leading slash", "", "/a/b.txt", "a/b.txt"},
		{"root", "uploads", "a/b.txt", "uploads/a/b.txt"},
		{"root leading slash", "uploads", "/a/b.txt", "uploads/a/b.txt"},
		{"duplicate separators", "uploads", "a//b.txt", "uploads/a/b.txt"},
		{"trailing separator kept", "uploads", "a/", "uploads/a/"},
		{"empty path", "uploads", "", "uploads/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, core.NewPrefixer(tt.root).Apply(tt.path))
		})
	}
}

func TestPrefixer_Remove(t *testing.T) {
	p := core.NewPrefixer("uploads")

	assert.Equal(t, "a/b.txt", p.Remove("uploads/a/b.txt"))
	assert.Equal(t, "a/", p.Remove("uploads/a/"))
	assert.Equal(t, "", p.Remove("uploads"))
	assert.Equal(t, "", p.Remove("uploads/"))
	assert.Equal(t, "other/x", p.Remove("other/x"))

	assert.Equal(t, "/as/is", core.NewPrefixer("").Remove("/as/is"))
}

func TestPrefixer_RoundTrip(t *testing.T) {
	paths := []string{
		"a",
		"a/b",
		"a/b/c.txt",
		"dir/",
		"deep/nested/dir/",
		"with space/file name.txt",
		"unicode/ünï.txt",
		".hidden",
	}

	for _, root := range []string{"", "uploads", "tenant/42", "/x/y/"} {
		p := core.NewPrefixer(root)
		for _, path := range paths {
			assert.Equal(t, path, p.Remove(p.Apply(path)), "root=%q path=%q", root, path)
		}
	}
}
