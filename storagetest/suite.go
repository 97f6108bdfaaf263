// Package storagetest provides a conformance test suite for validating
// storage adapters against the core.Adapter contract.
//
// This package contains test functions that adapter packages import and run
// against fresh instances of their adapter. The suite validates the contract,
// not backend-specific behavior: hierarchical filesystems and flat object
// stores must both pass it, with the documented differences expressed
// through Config.
//
// Example usage:
//
//	func TestMyAdapter(t *testing.T) {
//	    storagetest.TestSuite(t, func() core.Adapter {
//	        return myadapter.New()
//	    })
//	}
package storagetest

import (
	"testing"

	"github.com/jmgilman/go/storage/core"
)

// Config configures the test suite to match adapter behavior characteristics.
type Config struct {
	// VirtualDirectories indicates directories are emulated from key
	// prefixes. When true, a directory disappears with its last descendant.
	VirtualDirectories bool

	// FixedVisibility indicates the adapter cannot represent visibility and
	// reports a fixed default instead.
	FixedVisibility bool

	// SkipTests lists specific test names to skip.
	// Format: "Group/SubTest" (e.g., "Visibility/SetVisibility").
	SkipTests []string
}

// FilesystemConfig returns configuration for hierarchical filesystems
// (local disk, memory).
func FilesystemConfig() Config {
	return Config{}
}

// ObjectStoreConfig returns configuration for flat object stores (S3, MinIO).
func ObjectStoreConfig() Config {
	return Config{VirtualDirectories: true}
}

func (c Config) skipped(name string) bool {
	for _, skip := range c.SkipTests {
		if skip == name {
			return true
		}
	}
	return false
}

// run executes fn as subtest name unless the configuration skips it.
func (c Config) run(t *testing.T, group, name string, fn func(t *testing.T)) {
	t.Run(name, func(t *testing.T) {
		if c.skipped(group + "/" + name) {
			t.Skip("Skipped by adapter configuration")
		}
		fn(t)
	})
}

// TestSuite runs all conformance tests against an adapter.
// The newAdapter function should return a fresh, empty adapter for each
// call. Uses FilesystemConfig() by default.
func TestSuite(t *testing.T, newAdapter func() core.Adapter) {
	TestSuiteWithConfig(t, newAdapter, FilesystemConfig())
}

// TestSuiteWithConfig runs conformance tests with behavior configuration.
func TestSuiteWithConfig(t *testing.T, newAdapter func() core.Adapter, config Config) {
	groups := []struct {
		name string
		fn   func(t *testing.T, a core.Adapter, config Config)
	}{
		{"ReadWrite", TestReadWriteWithConfig},
		{"Manage", TestManageWithConfig},
		{"Directories", TestDirectoriesWithConfig},
		{"Listing", TestListingWithConfig},
		{"Visibility", TestVisibilityWithConfig},
		{"Streams", TestStreamsWithConfig},
	}

	for _, g := range groups {
		t.Run(g.name, func(t *testing.T) {
			if config.skipped(g.name) {
				t.Skip("Skipped by adapter configuration")
			}
			g.fn(t, newAdapter(), config)
		})
	}
}
