package fileserver

import (
	"mime"
	"path/filepath"
	"strings"
)

const defaultMIME = "application/octet-stream"

// mimeFor determines the MIME type for full's extension, consulting
// overrides first and falling back to the stdlib's extension table, then
// application/octet-stream, per spec §4.11 step 6.
func mimeFor(full string, overrides map[string]string) string {
	ext := strings.ToLower(filepath.Ext(full))
	if ext == "" {
		return defaultMIME
	}
	if overrides != nil {
		if t, ok := overrides[ext]; ok {
			return t
		}
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return defaultMIME
}
