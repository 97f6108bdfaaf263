package contenttype_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmgilman/go/storage/contenttype"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{"txt", "text/plain"},
		{".json", "application/json"},
		{"PNG", "image/png"},
		{"yml", "application/yaml"},
		{"", contenttype.Default},
		{"definitely-not-an-extension", contenttype.Default},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			assert.Equal(t, tt.want, contenttype.Lookup(tt.ext))
		})
	}
}

func TestDetect(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	assert.Equal(t, "text/plain", contenttype.Detect("notes/readme.txt", nil))
	assert.Equal(t, "image/png", contenttype.Detect("uploads/blob", png))
	assert.Equal(t, "text/plain", contenttype.Detect("a.txt", png), "extension wins over content")
	assert.Equal(t, contenttype.Default, contenttype.Detect("uploads/blob", nil))
	assert.Equal(t, contenttype.Default, contenttype.Detect("dir.v2/blob", nil))
}
