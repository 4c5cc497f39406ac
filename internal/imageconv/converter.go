package imageconv

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/gubarz/mdassist/internal/parser"
)

var (
	// ErrNotImage is returned for urls without a recognized image extension
	ErrNotImage = errors.New("not a recognized image")
	// ErrUnreadable is returned when the image file cannot be read, either
	// at its literal path or relative to the document
	ErrUnreadable = errors.New("image unreadable")
	// ErrRender is returned when the renderer fails to rescale the image
	ErrRender = errors.New("image render failed")
)

const (
	defaultCacheSize = 64
	defaultCacheTTL  = 10 * time.Minute
)

// Config configures a Converter. Zero values select the defaults.
type Config struct {
	Fs        afero.Fs
	Renderer  Renderer
	Logger    *zap.Logger
	CacheSize int
	CacheTTL  time.Duration
}

// Converter produces data URIs for image files
type Converter struct {
	fs       afero.Fs
	renderer Renderer
	logger   *zap.Logger
	cache    *expirable.LRU[string, string]
}

// New creates a converter
func New(cfg Config) *Converter {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Renderer == nil {
		cfg.Renderer = RasterRenderer{JPEGQuality: DefaultJPEGQuality}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	return &Converter{
		fs:       cfg.Fs,
		renderer: cfg.Renderer,
		logger:   cfg.Logger,
		cache:    expirable.NewLRU[string, string](cfg.CacheSize, nil, cfg.CacheTTL),
	}
}

// ToDataURI reads the image at url, scales it to width and returns it as a
// data URI. A url that cannot be read as given is retried relative to the
// directory of docPath.
func (c *Converter) ToDataURI(ctx context.Context, url, docPath string, width int) (string, error) {
	mime := MIMEFromURL(url)
	if url == "" || mime == "" {
		c.logger.Debug("skip non-image url", zap.String("url", url))
		return "", fmt.Errorf("%w: %q", ErrNotImage, url)
	}

	path, info, err := c.resolve(url, docPath)
	if err != nil {
		c.logger.Warn("image unreadable", zap.String("url", url), zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	key := fmt.Sprintf("%s|%d|%d|%d", path, info.Size(), info.ModTime().UnixNano(), width)
	if uri, ok := c.cache.Get(key); ok {
		c.logger.Debug("data uri cache hit", zap.String("path", path))
		return uri, nil
	}

	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		c.logger.Warn("image unreadable", zap.String("path", path), zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	out, err := c.renderer.Render(ctx, data, mime, width)
	if err != nil {
		c.logger.Warn("image render failed",
			zap.String("path", path),
			zap.Int("width", width),
			zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}

	uri := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(out)
	c.cache.Add(key, uri)
	c.logger.Debug("converted image",
		zap.String("path", path),
		zap.Int("width", width),
		zap.Int("bytes", len(out)))
	return uri, nil
}

// Convert returns img with its url replaced by the data URI of the file
func (c *Converter) Convert(ctx context.Context, img parser.Image, docPath string, width int) (parser.Image, error) {
	uri, err := c.ToDataURI(ctx, img.URL, docPath, width)
	if err != nil {
		return img, err
	}
	return parser.Image{Alt: img.Alt, URL: uri}, nil
}

// resolve stats url as given and falls back to the document directory for
// relative urls
func (c *Converter) resolve(url, docPath string) (string, os.FileInfo, error) {
	info, err := c.fs.Stat(url)
	if err == nil {
		return url, info, nil
	}
	if docPath == "" || filepath.IsAbs(url) {
		return "", nil, err
	}

	alt := filepath.Join(filepath.Dir(docPath), url)
	info, altErr := c.fs.Stat(alt)
	if altErr != nil {
		return "", nil, fmt.Errorf("%s: %w", url, altErr)
	}
	return alt, info, nil
}
