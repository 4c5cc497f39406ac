package parser

import (
	"regexp"
	"strings"
)

// Only `![alt](url)` spanning the whole line. Titles, reference images and
// trailing text are not matched.
var imageLineRe = regexp.MustCompile(`^!\[(.*?)\]\((\S+)\)$`)

const (
	dataImagePrefix   = "data:image/"
	base64Marker      = ";base64,"
	wildcardDataImage = "data:image/*;base64,"
	base64ProbeLength = 30
)

// Image is a markdown image reference found on a line
type Image struct {
	Alt string
	URL string
}

// Markdown renders the image back to markdown syntax
func (i Image) Markdown() string {
	return "![" + i.Alt + "](" + i.URL + ")"
}

// IsDataURI reports whether the image URL is already embedded
func (i Image) IsDataURI() bool {
	return strings.HasPrefix(i.URL, "data:")
}

// ImageFromLine returns the image when the entire line is `![alt](url)`
func ImageFromLine(line string) (Image, bool) {
	m := imageLineRe.FindStringSubmatch(line)
	if m == nil {
		return Image{}, false
	}
	return Image{Alt: m[1], URL: m[2]}, true
}

// IsBase64Payload reports whether a line holds a bare base64 image payload
// that can be wrapped into image syntax. Lines starting with `[` are already
// part of markdown syntax and are rejected.
func IsBase64Payload(line string) bool {
	if strings.HasPrefix(line, "[") {
		return false
	}
	probe := line
	if len(probe) > base64ProbeLength {
		probe = probe[:base64ProbeLength]
	}
	if strings.HasPrefix(probe, dataImagePrefix) && strings.Contains(probe, base64Marker) {
		return true
	}
	return strings.Contains(line, wildcardDataImage)
}
