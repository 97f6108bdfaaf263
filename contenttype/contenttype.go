// Package contenttype resolves the content type stored with written files.
//
// Lookup is a pure extension table. Detect adds content sniffing for files
// whose extension is unknown.
package contenttype

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Default is returned when no better content type is known.
const Default = "application/octet-stream"

// extensions takes precedence over the host mime database, whose contents
// vary between systems.
var extensions = map[string]string{
	"css":  "text/css",
	"csv":  "text/csv",
	"gif":  "image/gif",
	"gz":   "application/gzip",
	"htm":  "text/html",
	"html": "text/html",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"js":   "text/javascript",
	"json": "application/json",
	"md":   "text/markdown",
	"mp3":  "audio/mpeg",
	"mp4":  "video/mp4",
	"pdf":  "application/pdf",
	"png":  "image/png",
	"svg":  "image/svg+xml",
	"tar":  "application/x-tar",
	"txt":  "text/plain",
	"wasm": "application/wasm",
	"webp": "image/webp",
	"xml":  "application/xml",
	"yaml": "application/yaml",
	"yml":  "application/yaml",
	"zip":  "application/zip",
}

// Lookup maps a file extension, with or without its leading dot, to a
// content type. Unknown extensions yield Default.
func Lookup(ext string) string {
	if t, ok := lookup(ext); ok {
		return t
	}
	return Default
}

func lookup(ext string) (string, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return "", false
	}
	if t, ok := extensions[ext]; ok {
		return t, true
	}
	if t := mime.TypeByExtension("." + ext); t != "" {
		return t, true
	}
	return "", false
}

// Detect resolves the content type of the file at path. The extension is
// consulted first; when it is unknown and head holds the leading bytes of
// the file, the content is sniffed.
func Detect(path string, head []byte) string {
	ext := ""
	base := path[strings.LastIndex(path, "/")+1:]
	if i := strings.LastIndex(base, "."); i >= 0 {
		ext = base[i+1:]
	}
	if t, ok := lookup(ext); ok {
		return t
	}
	if len(head) == 0 {
		return Default
	}
	return mimetype.Detect(head).String()
}
