package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmgilman/go/storage/core"
)

func paths(entries []core.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

func find(entries []core.Entry, path string) (core.Entry, bool) {
	for _, e := range entries {
		if e.Path == path {
			return e, true
		}
	}
	return core.Entry{}, false
}

func TestEmulateDirectories_SynthesizesIntermediate(t *testing.T) {
	listing := []core.Entry{core.NewFileEntry("a/b/c.txt")}

	got := core.EmulateDirectories(listing, "a", true)

	assert.Equal(t, []string{"a/b", "a/b/c.txt"}, paths(got))
	dir, ok := find(got, "a/b")
	assert.True(t, ok)
	assert.Equal(t, core.TypeDir, dir.Type)
	assert.Equal(t, "a", dir.Dirname)
}

func TestEmulateDirectories_NonRecursiveScoping(t *testing.T) {
	listing := []core.Entry{
		core.NewFileEntry("a/b/c.txt"),
		core.NewFileEntry("a/top.txt"),
	}

	got := core.EmulateDirectories(listing, "a", false)

	assert.Equal(t, []string{"a/b", "a/top.txt"}, paths(got))
	b, _ := find(got, "a/b")
	assert.True(t, b.IsDir())
}

func TestEmulateDirectories_RealEntryWins(t *testing.T) {
	real := core.NewDirEntry("a/b")
	real.Timestamp = 1234

	got := core.EmulateDirectories([]core.Entry{
		core.NewFileEntry("a/b/c/d.txt"),
		real,
	}, "a", true)

	assert.Equal(t, []string{"a/b", "a/b/c", "a/b/c/d.txt"}, paths(got))
	assert.Equal(t, int64(1234), got[0].Timestamp)
}

func TestEmulateDirectories_DropsRootAndOutsiders(t *testing.T) {
	got := core.EmulateDirectories([]core.Entry{
		core.NewDirEntry("a"),
		core.NewFileEntry("ab/c.txt"),
		core.NewFileEntry("z.txt"),
		core.NewFileEntry("a/x.txt"),
	}, "a/", true)

	assert.Equal(t, []string{"a/x.txt"}, paths(got))
}

func TestEmulateDirectories_Deduplicates(t *testing.T) {
	got := core.EmulateDirectories([]core.Entry{
		core.NewDirEntry("a/b"),
		core.NewDirEntry("a/b"),
		core.NewFileEntry("a/b/1.txt"),
		core.NewFileEntry("a/b/2.txt"),
	}, "", true)

	assert.Equal(t, []string{"a", "a/b", "a/b/1.txt", "a/b/2.txt"}, paths(got))
}

func TestEmulateDirectories_EmptyListing(t *testing.T) {
	assert.Empty(t, core.EmulateDirectories(nil, "anything", true))
	assert.Empty(t, core.EmulateDirectories(nil, "", false))
}

func TestEmulateDirectories_PlaceholderOnly(t *testing.T) {
	n := core.NewNormalizer(nil, core.FieldMap{"Key": core.FieldPath})
	listing := []core.Entry{n.Normalize(core.Raw{"Key": "empty/", "Size": 0}, "")}

	got := core.EmulateDirectories(listing, "", false)

	assert.Len(t, got, 1)
	assert.Equal(t, "empty", got[0].Path)
	assert.True(t, got[0].IsDir())
}

func TestEmulateDirectories_RecursiveOrdering(t *testing.T) {
	got := core.EmulateDirectories([]core.Entry{
		core.NewFileEntry("test2/test.txt"),
		core.NewFileEntry("test2/test32/test4/z.txt"),
		core.NewFileEntry("test2/test31/test4/a.txt"),
		core.NewFileEntry("test2/test31-x.txt"),
	}, "test2", true)

	assert.Equal(t, []string{
		"test2/test.txt",
		"test2/test31",
		"test2/test31/test4",
		"test2/test31/test4/a.txt",
		"test2/test31-x.txt",
		"test2/test32",
		"test2/test32/test4",
		"test2/test32/test4/z.txt",
	}, paths(got))

	for _, e := range got {
		assert.Equal(t, core.Dirname(e.Path), e.Dirname, e.Path)
	}
}

func TestEmulateDirectories_DirnameAgreesAcrossModes(t *testing.T) {
	listing := []core.Entry{
		core.NewFileEntry("root/a/b/c.txt"),
		core.NewFileEntry("root/d.txt"),
	}

	deep := core.EmulateDirectories(listing, "root", true)
	shallow := core.EmulateDirectories(listing, "root", false)

	for _, s := range shallow {
		d, ok := find(deep, s.Path)
		assert.True(t, ok, s.Path)
		assert.Equal(t, s.Dirname, d.Dirname)
		assert.Equal(t, "root", s.Dirname)
	}
}

func TestEmulateDirectories_DoesNotMutateInput(t *testing.T) {
	listing := []core.Entry{core.NewFileEntry("b.txt"), core.NewFileEntry("a.txt")}

	_ = core.EmulateDirectories(listing, "", false)

	assert.Equal(t, []string{"b.txt", "a.txt"}, paths(listing))
}
