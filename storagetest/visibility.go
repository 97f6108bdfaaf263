package storagetest

import (
	"context"
	"testing"

	"github.com/jmgilman/go/storage/core"
)

// TestVisibility tests GetVisibility and SetVisibility.
// Uses FilesystemConfig() by default.
func TestVisibility(t *testing.T, a core.Adapter) {
	TestVisibilityWithConfig(t, a, FilesystemConfig())
}

// TestVisibilityWithConfig tests visibility with behavior configuration.
func TestVisibilityWithConfig(t *testing.T, a core.Adapter, config Config) {
	const group = "Visibility"
	config.run(t, group, "DefaultPublic", func(t *testing.T) { testVisibilityDefault(t, a) })
	config.run(t, group, "Missing", func(t *testing.T) { testVisibilityMissing(t, a) })
	config.run(t, group, "Invalid", func(t *testing.T) { testVisibilityInvalid(t, a) })
	config.run(t, group, "WriteOption", func(t *testing.T) { testVisibilityWriteOption(t, a, config) })
	config.run(t, group, "SetVisibility", func(t *testing.T) { testSetVisibility(t, a, config) })
	config.run(t, group, "UpdateKeepsVisibility", func(t *testing.T) {
		if config.FixedVisibility {
			t.Skip("adapter reports a fixed visibility")
		}
		testUpdateKeepsVisibility(t, a)
	})
}

// testVisibilityDefault verifies files written without options are public.
func testVisibilityDefault(t *testing.T, a core.Adapter) {
	mustWrite(t, a, "vis/default.txt", "x")

	entry, found, err := a.GetVisibility(context.Background(), "vis/default.txt")
	if err != nil || !found {
		t.Fatalf("GetVisibility(vis/default.txt): got (found=%v, err=%v)", found, err)
	}
	if entry.Visibility != core.VisibilityPublic {
		t.Errorf("GetVisibility(vis/default.txt) = %q, want %q", entry.Visibility, core.VisibilityPublic)
	}
}

// testVisibilityMissing verifies missing targets are reported as not found.
func testVisibilityMissing(t *testing.T, a core.Adapter) {
	ctx := context.Background()

	if _, found, err := a.GetVisibility(ctx, "vis/missing.txt"); found || err != nil {
		t.Errorf("GetVisibility(missing) = (found=%v, err=%v), want (false, nil)", found, err)
	}
	if _, found, err := a.SetVisibility(ctx, "vis/missing.txt", core.VisibilityPrivate); found || err != nil {
		t.Errorf("SetVisibility(missing) = (found=%v, err=%v), want (false, nil)", found, err)
	}
}

// testVisibilityInvalid verifies values outside the two states are rejected.
func testVisibilityInvalid(t *testing.T, a core.Adapter) {
	mustWrite(t, a, "vis/invalid.txt", "x")

	if _, _, err := a.SetVisibility(context.Background(), "vis/invalid.txt", core.Visibility("world")); err == nil {
		t.Error("SetVisibility(world): got nil error, want INVALID_INPUT")
	}
}

// testVisibilityWriteOption verifies the write-time visibility option.
func testVisibilityWriteOption(t *testing.T, a core.Adapter, config Config) {
	ctx := context.Background()
	opts := core.Options{Visibility: core.VisibilityPrivate}
	if _, err := a.Write(ctx, "vis/private.txt", []byte("secret"), opts); err != nil {
		t.Fatalf("Write(vis/private.txt): got error %v, want nil", err)
	}

	want := core.VisibilityPrivate
	if config.FixedVisibility {
		want = core.VisibilityPublic
	}
	entry, _, err := a.GetVisibility(ctx, "vis/private.txt")
	if err != nil {
		t.Fatalf("GetVisibility(vis/private.txt): got error %v", err)
	}
	if entry.Visibility != want {
		t.Errorf("GetVisibility(vis/private.txt) = %q, want %q", entry.Visibility, want)
	}
}

// testSetVisibility toggles a file between the two states.
func testSetVisibility(t *testing.T, a core.Adapter, config Config) {
	ctx := context.Background()
	mustWrite(t, a, "vis/toggle.txt", "contents survive")

	for _, v := range []core.Visibility{core.VisibilityPrivate, core.VisibilityPublic} {
		want := v
		if config.FixedVisibility {
			want = core.VisibilityPublic
		}

		entry, found, err := a.SetVisibility(ctx, "vis/toggle.txt", v)
		if err != nil || !found {
			t.Fatalf("SetVisibility(%s): got (found=%v, err=%v)", v, found, err)
		}
		if entry.Visibility != want {
			t.Errorf("SetVisibility(%s) returned %q, want %q", v, entry.Visibility, want)
		}

		got, _, _ := a.GetVisibility(ctx, "vis/toggle.txt")
		if got.Visibility != want {
			t.Errorf("GetVisibility after SetVisibility(%s) = %q, want %q", v, got.Visibility, want)
		}
	}

	read, _, _ := a.Read(ctx, "vis/toggle.txt")
	if string(read.Contents) != "contents survive" {
		t.Errorf("Read(vis/toggle.txt) after SetVisibility = %q, want unchanged", read.Contents)
	}
}

// testUpdateKeepsVisibility verifies Update without a visibility option
// keeps the current one.
func testUpdateKeepsVisibility(t *testing.T, a core.Adapter) {
	ctx := context.Background()
	opts := core.Options{Visibility: core.VisibilityPrivate}
	if _, err := a.Write(ctx, "vis/kept.txt", []byte("v1"), opts); err != nil {
		t.Fatalf("Write(vis/kept.txt): setup failed: %v", err)
	}

	if _, err := a.Update(ctx, "vis/kept.txt", []byte("v2"), core.Options{}); err != nil {
		t.Fatalf("Update(vis/kept.txt): got error %v, want nil", err)
	}

	entry, _, _ := a.GetVisibility(ctx, "vis/kept.txt")
	if entry.Visibility != core.VisibilityPrivate {
		t.Errorf("GetVisibility(vis/kept.txt) after Update = %q, want %q", entry.Visibility, core.VisibilityPrivate)
	}
}
