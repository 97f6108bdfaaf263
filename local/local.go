package local

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"

	"github.com/jmgilman/go/storage/contenttype"
	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/errors"
	"github.com/jmgilman/go/storage/logging"
)

// tempPrefix marks in-flight writes. Entries carrying it are hidden from
// listings.
const tempPrefix = ".storage-"

// fields maps the attributes of a stat result onto Entry fields.
var fields = core.FieldMap{
	"Name":        core.FieldPath,
	"Size":        core.FieldSize,
	"ModTime":     core.FieldTimestamp,
	"Contents":    core.FieldContents,
	"ContentType": core.FieldMimetype,
	"Visibility":  core.FieldVisibility,
}

// Permissions maps the two visibility states onto POSIX permission bits.
type Permissions struct {
	FilePublic  os.FileMode
	FilePrivate os.FileMode
	DirPublic   os.FileMode
	DirPrivate  os.FileMode
}

// DefaultPermissions are the modes used unless WithPermissions overrides them.
var DefaultPermissions = Permissions{
	FilePublic:  0o644,
	FilePrivate: 0o600,
	DirPublic:   0o755,
	DirPrivate:  0o700,
}

func (p Permissions) file(v core.Visibility) os.FileMode {
	if v == core.VisibilityPrivate {
		return p.FilePrivate
	}
	return p.FilePublic
}

func (p Permissions) dir(v core.Visibility) os.FileMode {
	if v == core.VisibilityPrivate {
		return p.DirPrivate
	}
	return p.DirPublic
}

// visibilityOf reads the other-read bit of mode.
func visibilityOf(mode os.FileMode) core.Visibility {
	if mode.Perm()&0o004 != 0 {
		return core.VisibilityPublic
	}
	return core.VisibilityPrivate
}

// Adapter implements core.Adapter on top of a go-billy filesystem.
//
// It backs both the local disk (osfs) and the in-memory filesystem (memfs).
// Every path is namespaced under the configured prefix inside the billy root.
type Adapter struct {
	bfs        billy.Filesystem
	kind       core.Kind
	osRoot     string
	prefixer   *core.Prefixer
	normalizer *core.Normalizer
	perms      Permissions
	detect     func(path string, head []byte) string
	logger     *zap.Logger
}

// Option configures an Adapter.
type Option func(*config)

type config struct {
	prefix string
	logger *zap.Logger
	perms  Permissions
	detect func(path string, head []byte) string
}

// WithPrefix roots every path under prefix inside the filesystem.
func WithPrefix(prefix string) Option {
	return func(c *config) { c.prefix = prefix }
}

// WithLogger sets the logger. Nil means no logging.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithPermissions overrides the modes applied for each visibility.
func WithPermissions(p Permissions) Option {
	return func(c *config) { c.perms = p }
}

// WithMimeDetector replaces the function used by GetMimetype.
func WithMimeDetector(detect func(path string, head []byte) string) Option {
	return func(c *config) { c.detect = detect }
}

// New creates an adapter for the local directory root, creating it when it
// does not exist.
func New(root string, opts ...Option) (*Adapter, error) {
	if root == "" {
		return nil, errors.New(errors.CodeInvalidConfig, "local root directory is required")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeInvalidConfig, "failed to resolve root %s", root)
	}

	info, err := os.Stat(abs)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(abs, DefaultPermissions.DirPublic); err != nil {
			return nil, errors.Wrapf(err, errors.CodeStorage, "failed to create root %s", abs)
		}
	case err != nil:
		return nil, errors.Wrapf(err, errors.CodeStorage, "failed to stat root %s", abs)
	case !info.IsDir():
		return nil, errors.Newf(errors.CodeInvalidConfig, "root %s is not a directory", abs)
	}

	a := newAdapter(osfs.New(abs), core.KindLocal, opts...)
	a.osRoot = abs
	return a, nil
}

// NewMemory creates an adapter backed by an empty in-memory filesystem.
func NewMemory(opts ...Option) *Adapter {
	return newAdapter(memfs.New(), core.KindMemory, opts...)
}

// NewFromBilly wraps an existing billy filesystem and reports kind as its
// medium. Filesystems rooted on the host disk should be passed to New
// instead so visibility can be changed through the operating system.
func NewFromBilly(bfs billy.Filesystem, kind core.Kind, opts ...Option) *Adapter {
	return newAdapter(bfs, kind, opts...)
}

func newAdapter(bfs billy.Filesystem, kind core.Kind, opts ...Option) *Adapter {
	cfg := config{perms: DefaultPermissions, detect: contenttype.Detect}
	for _, opt := range opts {
		opt(&cfg)
	}

	prefixer := core.NewPrefixer(cfg.prefix)
	return &Adapter{
		bfs:        bfs,
		kind:       kind,
		prefixer:   prefixer,
		normalizer: core.NewNormalizer(prefixer, fields),
		perms:      cfg.perms,
		detect:     cfg.detect,
		logger:     logging.Adapter(cfg.logger, kind.String(), prefixer.Prefix()),
	}
}

// Unwrap returns the underlying billy.Filesystem.
func (a *Adapter) Unwrap() billy.Filesystem {
	return a.bfs
}

// Kind returns KindLocal for New, KindMemory for NewMemory and the kind
// given to NewFromBilly.
func (a *Adapter) Kind() core.Kind {
	return a.kind
}

// PathPrefix returns the namespace root.
func (a *Adapter) PathPrefix() string {
	return a.prefixer.Prefix()
}

// location resolves a caller path to a billy path. The result has no
// trailing separator; the empty string denotes the billy root.
func (a *Adapter) location(path string) string {
	return strings.TrimSuffix(a.prefixer.Apply(path), core.Separator)
}

// stat returns the FileInfo at location. A missing target is reported as
// found == false with a nil error.
func (a *Adapter) stat(location string) (fs.FileInfo, bool, error) {
	if location == "" {
		return rootInfo{}, true, nil
	}
	info, err := a.bfs.Stat(location)
	if err != nil {
		if os.IsNotExist(err) || isNotDir(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return info, true, nil
}

// entry normalizes a stat result for location.
func (a *Adapter) entry(location string, info fs.FileInfo) core.Entry {
	name := location
	if info.IsDir() {
		name += core.Separator
	}
	return a.normalizer.Normalize(core.Raw{
		"Name":    name,
		"Size":    info.Size(),
		"ModTime": info.ModTime(),
	}, "")
}

// billyPath maps the empty location onto the billy root.
func billyPath(location string) string {
	if location == "" {
		return "."
	}
	return location
}

// isNotDir reports failures raised when a path component is a regular file.
func isNotDir(err error) bool {
	return stderrors.Is(err, syscall.ENOTDIR)
}

// rootInfo describes the billy root, which always exists.
type rootInfo struct{}

func (rootInfo) Name() string       { return "." }
func (rootInfo) Size() int64        { return 0 }
func (rootInfo) Mode() fs.FileMode  { return fs.ModeDir | DefaultPermissions.DirPublic }
func (rootInfo) ModTime() time.Time { return time.Time{} }
func (rootInfo) IsDir() bool        { return true }
func (rootInfo) Sys() any           { return nil }

func (a *Adapter) fail(op, path string, err error) error {
	return core.NewStorageError(op, path, err)
}

// debugFailure records a fault swallowed by a boolean operation.
func (a *Adapter) debugFailure(op, path string, err error) {
	a.logger.Debug("operation failed", zap.String("op", op), zap.String("path", path), zap.Error(err))
}

func ctxErr(ctx context.Context, op, path string) error {
	if err := ctx.Err(); err != nil {
		return core.NewStorageError(op, path, err)
	}
	return nil
}

// Compile-time interface check.
var _ core.Adapter = (*Adapter)(nil)
