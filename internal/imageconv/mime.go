// Package imageconv turns local image references into base64 data URIs,
// optionally scaled to a target width.
package imageconv

import (
	"sort"
	"strings"
)

var extToMIME = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"jpe":  "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"ico":  "image/x-icon",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
}

// MIMEFromURL returns the image MIME type for the extension of url, ignoring
// any query or fragment. Unknown extensions return "".
func MIMEFromURL(url string) string {
	clean, _, _ := strings.Cut(url, "#")
	clean, _, _ = strings.Cut(clean, "?")

	last := clean
	if i := strings.LastIndex(clean, "/"); i >= 0 {
		last = clean[i+1:]
	}
	dot := strings.LastIndex(last, ".")
	if dot < 0 {
		return ""
	}
	return extToMIME[strings.ToLower(last[dot+1:])]
}

// Extensions lists the recognized image extensions, sorted
func Extensions() []string {
	exts := make([]string, 0, len(extToMIME))
	for ext := range extToMIME {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
