package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gubarz/mdassist/internal/actions"
	"github.com/gubarz/mdassist/internal/commands"
	"github.com/gubarz/mdassist/internal/config"
	"github.com/gubarz/mdassist/internal/host"
	"github.com/gubarz/mdassist/internal/imageconv"
	"github.com/gubarz/mdassist/internal/lists"
	"github.com/gubarz/mdassist/internal/logging"
	"github.com/gubarz/mdassist/internal/output"
	"github.com/gubarz/mdassist/internal/scan"
)

// app wires the editing services for one invocation
type app struct {
	logger *zap.Logger
	fs     afero.Fs
	mode   output.Mode
	writer *output.Writer

	settings   config.Settings
	converter  *imageconv.Converter
	renumberer *lists.Renumberer
	quickFixes *actions.QuickFixProvider
	lenses     *actions.LensProvider
	registry   *commands.Registry

	pathArg string
}

// errNoPath is returned when a path is requested without --path
var errNoPath = errors.New("no path given (use --path)")

// newApp builds the services from configuration. Interactive commands log
// only to --log-file so the screen stays clean.
func newApp(cmd *cobra.Command, interactive bool) (*app, error) {
	mode, err := output.ParseMode(config.GetOutput())
	if err != nil {
		return nil, err
	}

	logPath, _ := cmd.Flags().GetString("log-file")
	if logPath == "" && !interactive {
		logPath = "stderr"
	}
	logger, err := logging.Init(logging.ZapConfig{
		Level:      config.GetLogLevel(),
		Mode:       logging.ModeProduction,
		Encoding:   "console",
		OutputPath: logPath,
	})
	if err != nil {
		return nil, err
	}

	fs := afero.NewOsFs()
	a := &app{
		logger: logger,
		fs:     fs,
		mode:   mode,
		writer: output.NewWriter(cmd.OutOrStdout()),
		converter: imageconv.New(imageconv.Config{
			Fs:        fs,
			Renderer:  imageconv.RasterRenderer{JPEGQuality: config.GetJPEGQuality()},
			Logger:    logger,
			CacheSize: config.GetCacheSize(),
			CacheTTL:  config.GetCacheTTL(),
		}),
	}
	if f := cmd.Flags().Lookup("path"); f != nil {
		a.pathArg = f.Value.String()
	}
	a.configure(flagSettings(cmd, config.Current()))
	return a, nil
}

// configure rebuilds the services that depend on per-document settings
func (a *app) configure(s config.Settings) {
	a.settings = s
	a.renumberer = lists.NewRenumberer(lists.Settings{
		AutoRenumber: s.AutoRenumber,
		Marker:       s.ListMarker,
	}, a.logger)
	a.quickFixes = actions.NewQuickFixProvider(a.converter, s.ResizeWidth, a.logger)
	a.lenses = actions.NewLensProvider(s.LineTools)
	a.registry = commands.Markdown(commands.Deps{
		Renumberer: a.renumberer,
		QuickFixes: a.quickFixes,
		Candidates: lists.CandidateMarkers(config.GetCandidateMarkers()),
		PickPath:   a.pickPath,
		Logger:     a.logger,
	})
}

// open loads a document and applies its front matter settings. A missing
// file opens as an empty document when create is set.
func (a *app) open(cmd *cobra.Command, path string, create bool) (*host.Buffer, error) {
	buf, err := host.Open(a.fs, path)
	if err != nil {
		if !create || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		buf = host.NewBuffer(path, "")
	}

	o, err := scan.FrontMatter([]byte(buf.Text()))
	if err != nil {
		a.logger.Warn("front matter ignored", zap.String("path", path), zap.Error(err))
		return buf, nil
	}
	if !o.IsZero() {
		a.logger.Debug("front matter overrides", zap.String("path", path))
		a.configure(flagSettings(cmd, o.Apply(a.settings)))
	}
	return buf, nil
}

// pickPath returns the file named by --path relative to the document
func (a *app) pickPath(_ context.Context, docPath string) (string, error) {
	if a.pathArg == "" {
		return "", errNoPath
	}
	target, err := filepath.Abs(a.pathArg)
	if err != nil {
		return "", err
	}
	doc, err := filepath.Abs(docPath)
	if err != nil {
		return target, nil
	}
	if rel, err := filepath.Rel(filepath.Dir(doc), target); err == nil {
		return rel, nil
	}
	return target, nil
}

// close flushes the logger
func (a *app) close() {
	_ = a.logger.Sync()
}

// flagSettings lets explicit flags win over config and front matter
func flagSettings(cmd *cobra.Command, s config.Settings) config.Settings {
	if cmd.Flags().Changed("width") {
		if width, err := cmd.Flags().GetInt("width"); err == nil {
			s.ResizeWidth = width
		}
	}
	return s
}

// deliver hands an edited document to the configured output
func (a *app) deliver(buf *host.Buffer) error {
	if err := a.writer.Document(buf, a.mode); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	return nil
}
