package imageconv

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	// registers the webp decoder for Describe
	_ "golang.org/x/image/webp"
)

// DefaultJPEGQuality matches the 0.8 quality factor of a browser canvas
const DefaultJPEGQuality = 80

// Renderer rescales encoded image bytes to a target width, keeping the
// aspect ratio and the encoding
type Renderer interface {
	Render(ctx context.Context, data []byte, mime string, width int) ([]byte, error)
}

// RasterRenderer decodes, scales and re-encodes raster images in process
type RasterRenderer struct {
	JPEGQuality int
}

// Render scales data to width pixels. A width of zero or less, and formats
// without an encoder, return data unchanged.
func (r RasterRenderer) Render(ctx context.Context, data []byte, mime string, width int) ([]byte, error) {
	if width <= 0 || !Encodable(mime) {
		return data, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", mime, err)
	}
	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("decode %s: empty image", mime)
	}
	height := max(1, int(math.Round(float64(bounds.Dy())*float64(width)/float64(bounds.Dx()))))

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch mime {
	case "image/jpeg":
		quality := r.JPEGQuality
		if quality <= 0 || quality > 100 {
			quality = DefaultJPEGQuality
		}
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality})
	case "image/png":
		err = png.Encode(&buf, dst)
	case "image/gif":
		err = gif.Encode(&buf, dst, nil)
	case "image/bmp":
		err = bmp.Encode(&buf, dst)
	case "image/tiff":
		err = tiff.Encode(&buf, dst, &tiff.Options{Compression: tiff.Deflate})
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", mime, err)
	}
	return buf.Bytes(), nil
}

// Encodable reports whether RasterRenderer can re-encode the MIME type
func Encodable(mime string) bool {
	switch mime {
	case "image/jpeg", "image/png", "image/gif", "image/bmp", "image/tiff":
		return true
	}
	return false
}

// Info describes an encoded raster image
type Info struct {
	Format string
	Width  int
	Height int
}

// Describe reads the format and dimensions of an encoded image without
// decoding the pixels
func Describe(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("describe image: %w", err)
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
