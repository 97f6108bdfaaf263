package core

import (
	"fmt"
	"strings"
	"time"
)

// Options configures Write, WriteStream, Update and CreateDir.
//
// The zero value requests backend defaults. Adapters ignore fields their
// medium has no equivalent for.
type Options struct {
	// Visibility applied to the written file or created directory.
	Visibility Visibility

	CacheControl       string
	Expires            time.Time
	StorageClass       string
	ContentType        string
	ContentEncoding    string
	ContentDisposition string
	ContentLanguage    string

	// Metadata holds custom key/value tags stored with the object.
	Metadata map[string]string
}

type optionSetter func(o *Options, v any) bool

// optionKeys is the allow-list of recognized configuration keys, indexed by
// their canonical spelling (lowercase, no separators).
var optionKeys = map[string]optionSetter{
	"visibility": func(o *Options, v any) bool {
		s, ok := asString(v)
		if !ok || !Visibility(s).Valid() {
			return false
		}
		o.Visibility = Visibility(s)
		return true
	},
	"cachecontrol":       stringOption(func(o *Options) *string { return &o.CacheControl }),
	"storageclass":       stringOption(func(o *Options) *string { return &o.StorageClass }),
	"contenttype":        stringOption(func(o *Options) *string { return &o.ContentType }),
	"contentencoding":    stringOption(func(o *Options) *string { return &o.ContentEncoding }),
	"contentdisposition": stringOption(func(o *Options) *string { return &o.ContentDisposition }),
	"contentlanguage":    stringOption(func(o *Options) *string { return &o.ContentLanguage }),
	"expires": func(o *Options, v any) bool {
		if t, ok := v.(time.Time); ok {
			o.Expires = t
			return true
		}
		if ts, ok := asEpoch(v); ok {
			o.Expires = time.Unix(ts, 0).UTC()
			return true
		}
		return false
	},
	"metadata": func(o *Options, v any) bool {
		m, ok := asStringMap(v)
		if !ok {
			return false
		}
		if o.Metadata == nil {
			o.Metadata = make(map[string]string, len(m))
		}
		for k, val := range m {
			o.Metadata[k] = val
		}
		return true
	},
}

func stringOption(field func(o *Options) *string) optionSetter {
	return func(o *Options, v any) bool {
		s, ok := asString(v)
		if !ok {
			return false
		}
		*field(o) = s
		return true
	}
}

// ParseOptions builds Options from a loosely typed configuration map such as
// one decoded from YAML or JSON.
//
// Keys are matched case-insensitively with "-" and "_" ignored, so
// "Cache-Control", "cache_control" and "CacheControl" are equivalent.
// Unrecognized keys and values of the wrong type are ignored.
func ParseOptions(config map[string]any) Options {
	var o Options
	for key, value := range config {
		if set, ok := optionKeys[canonicalOptionKey(key)]; ok {
			set(&o, value)
		}
	}
	return o
}

func canonicalOptionKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "-", "")
	return strings.ReplaceAll(key, "_", "")
}

// VisibilityOr returns o.Visibility, or fallback when none was requested.
func (o Options) VisibilityOr(fallback Visibility) Visibility {
	if o.Visibility.Valid() {
		return o.Visibility
	}
	return fallback
}

// String implements fmt.Stringer for log fields.
func (o Options) String() string {
	return fmt.Sprintf("visibility=%q content-type=%q storage-class=%q metadata=%d",
		o.Visibility, o.ContentType, o.StorageClass, len(o.Metadata))
}
