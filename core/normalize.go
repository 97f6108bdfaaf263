package core

import (
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Raw is a backend response flattened to named attributes, as the backend
// reports them (for example "Key", "LastModified", "ContentLength").
type Raw map[string]any

// Field names a canonical Entry attribute that a raw attribute can map onto.
type Field string

const (
	FieldPath         Field = "path"
	FieldSize         Field = "size"
	FieldTimestamp    Field = "timestamp"
	FieldContents     Field = "contents"
	FieldMimetype     Field = "mimetype"
	FieldVisibility   Field = "visibility"
	FieldETag         Field = "etag"
	FieldStorageClass Field = "storageclass"
	FieldMetadata     Field = "metadata"
)

// Metadata keys under which passthrough fields are stored on an Entry.
const (
	MetadataETag         = "etag"
	MetadataStorageClass = "storageclass"
)

// FieldMap maps backend attribute names onto canonical fields. Each backend
// declares exactly one.
type FieldMap map[string]Field

// Normalizer converts raw backend responses into Entries.
//
// Normalize is total: unknown attributes, nil values and values of an
// unexpected type are ignored rather than reported.
type Normalizer struct {
	prefixer *Prefixer
	fields   FieldMap
}

// NewNormalizer returns a Normalizer that strips prefixer's root from
// reported paths and resolves attributes through fields. A nil prefixer is
// treated as an empty root.
func NewNormalizer(prefixer *Prefixer, fields FieldMap) *Normalizer {
	if prefixer == nil {
		prefixer = &Prefixer{}
	}
	return &Normalizer{prefixer: prefixer, fields: fields}
}

// Normalize builds an Entry from raw.
//
// If explicitPath is non-empty it is used as the entry path, already relative
// to the namespace root. Otherwise the path comes from the attribute mapped to
// FieldPath with the root removed. A path ending in "/" yields a directory.
func (n *Normalizer) Normalize(raw Raw, explicitPath string) Entry {
	values := n.project(raw)

	path := explicitPath
	if path == "" {
		if s, ok := asString(values[FieldPath]); ok {
			path = n.prefixer.Remove(s)
		}
	}

	var entry Entry
	if IsDirPath(path) {
		entry = NewDirEntry(path)
	} else {
		entry = NewFileEntry(path)
	}

	if ts, ok := asEpoch(values[FieldTimestamp]); ok {
		entry.Timestamp = ts
	}
	if v, ok := asString(values[FieldVisibility]); ok && Visibility(v).Valid() {
		entry.Visibility = Visibility(v)
	}

	meta := make(map[string]string)
	if m, ok := asStringMap(values[FieldMetadata]); ok {
		for k, v := range m {
			meta[k] = v
		}
	}
	if etag, ok := asString(values[FieldETag]); ok && etag != "" {
		meta[MetadataETag] = strings.Trim(etag, `"`)
	}
	if class, ok := asString(values[FieldStorageClass]); ok && class != "" {
		meta[MetadataStorageClass] = class
	}
	if len(meta) > 0 {
		entry.Metadata = meta
	}

	if entry.IsDir() {
		return entry
	}

	if mt, ok := asString(values[FieldMimetype]); ok && mt != "" {
		entry.Mimetype = mt
	}
	if contents, ok := asBytes(values[FieldContents]); ok {
		entry = entry.WithContents(contents)
	}
	if size, ok := asInt64(values[FieldSize]); ok && size >= 0 {
		entry.Size = size
	}

	return entry
}

// project resolves raw attributes into canonical fields. Keys are visited in
// sorted order and the first usable value for a field wins, so the result
// does not depend on map iteration order. Keys that already are canonical
// field names map onto themselves.
func (n *Normalizer) project(raw Raw) map[Field]any {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[Field]any, len(keys))
	for _, k := range keys {
		v := raw[k]
		if isNil(v) {
			continue
		}
		field, ok := n.fields[k]
		if !ok {
			field = Field(k)
		}
		if _, taken := out[field]; taken {
			continue
		}
		out[field] = v
	}
	return out
}

func isNil(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case *string:
		return t == nil
	case *int64:
		return t == nil
	case *int32:
		return t == nil
	case *time.Time:
		return t == nil
	}
	return false
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case *string:
		if t == nil {
			return "", false
		}
		return *t, true
	case []byte:
		return string(t), true
	case interface{ String() string }:
		return t.String(), true
	}
	return "", false
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint32:
		return int64(t), true
	case uint64:
		return int64(t), true
	case float64:
		return int64(t), true
	case *int64:
		if t == nil {
			return 0, false
		}
		return *t, true
	case *int32:
		if t == nil {
			return 0, false
		}
		return int64(*t), true
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	}
	return 0, false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	http.TimeFormat,
	time.RFC1123,
	time.RFC1123Z,
}

func asEpoch(v any) (int64, bool) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return 0, false
		}
		return t.Unix(), true
	case *time.Time:
		if t == nil || t.IsZero() {
			return 0, false
		}
		return t.Unix(), true
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.Unix(), true
			}
		}
	}
	return asInt64(v)
}

func asBytes(v any) ([]byte, bool) {
	switch t := v.(type) {
	case []byte:
		return t, true
	case string:
		return []byte(t), true
	case io.Reader:
		if c, ok := t.(io.Closer); ok {
			defer func() { _ = c.Close() }()
		}
		b, err := io.ReadAll(t)
		if err != nil {
			return nil, false
		}
		return b, true
	}
	return nil, false
}

func asStringMap(v any) (map[string]string, bool) {
	switch t := v.(type) {
	case map[string]string:
		return t, true
	case map[string][]string:
		m := make(map[string]string, len(t))
		for k, vs := range t {
			if len(vs) > 0 {
				m[k] = vs[0]
			}
		}
		return m, true
	case http.Header:
		return asStringMap(map[string][]string(t))
	case map[string]any:
		m := make(map[string]string, len(t))
		for k, raw := range t {
			if s, ok := asString(raw); ok {
				m[k] = s
			}
		}
		return m, true
	}
	return nil, false
}
