package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/gubarz/mdassist/internal/actions"
	"github.com/gubarz/mdassist/internal/config"
	"github.com/gubarz/mdassist/internal/host"
	"github.com/gubarz/mdassist/internal/parser"
	"github.com/gubarz/mdassist/internal/scan"
	"github.com/gubarz/mdassist/internal/ui"
	"github.com/gubarz/mdassist/internal/watch"
)

// ============================================================================
// Command aliases
// ============================================================================

var (
	listKinds = map[string]string{
		"ordered":   "ordered-list",
		"unordered": "unordered-list",
		"check":     "check-list",
		"cycle":     "cycle-list",
	}
	headingDirs = map[string]string{
		"up":   "heading-up",
		"down": "heading-down",
	}
	formatStyles = map[string]string{
		"bold":   "bold",
		"italic": "italic",
		"strike": "strike",
		"code":   "code-span",
		"math":   "math-span",
		"quote":  "quote",
		"unlink": "delete-link",
	}
	insertBlocks = map[string]string{
		"code":      "code-block",
		"math":      "math-block",
		"container": "container",
		"details":   "details",
		"link":      "link",
		"image":     "image",
		"link-ref":  "link-ref",
		"footnote":  "footnote",
		"table":     "table",
		"divider":   "divider",
		"newline":   "newline",
		"mermaid":   "mermaid",
		"path":      "path",
	}
)

// aliasCmd builds a command running one of a fixed set of registered commands
func aliasCmd(use, short string, choices map[string]string) *cobra.Command {
	names := sortedKeys(choices)
	cmd := &cobra.Command{
		Use:       use,
		Short:     short,
		Long:      short + ".\n\nChoices: " + strings.Join(names, ", "),
		Args:      cobra.ExactArgs(2),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := choices[args[1]]
			if !ok {
				return fmt.Errorf("unknown choice %q (supported: %s)", args[1], strings.Join(names, ", "))
			}
			return editDocument(cmd, args[0], func(ctx context.Context, a *app, buf *host.Buffer) error {
				return a.registry.Run(ctx, id, buf)
			})
		},
	}
	addSelectionFlags(cmd)
	return cmd
}

// insertCmd adds --path for the "path" block
func insertCmd() *cobra.Command {
	cmd := aliasCmd("insert FILE BLOCK", "Insert a block or snippet at the cursor", insertBlocks)
	cmd.Flags().String("path", "", "File whose relative path the \"path\" block inserts")
	return cmd
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ============================================================================
// Selection
// ============================================================================

func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("line", "l", 1, "Cursor line (1-based)")
	cmd.Flags().IntP("col", "c", 1, "Cursor column in bytes (1-based)")
	cmd.Flags().Int("to-line", 0, "Line where the selection ends (defaults to --line)")
	cmd.Flags().Int("to-col", 0, "Column where the selection ends (defaults to --col)")
}

// selectionFromFlags converts the 1-based flags to a selection. The buffer
// clamps positions past the end of a line or document.
func selectionFromFlags(cmd *cobra.Command) host.Selection {
	line, _ := cmd.Flags().GetInt("line")
	col, _ := cmd.Flags().GetInt("col")
	toLine, _ := cmd.Flags().GetInt("to-line")
	toCol, _ := cmd.Flags().GetInt("to-col")
	if toLine <= 0 {
		toLine = line
	}
	if toCol <= 0 {
		toCol = col
	}
	return host.Selection{
		Anchor: host.Position{Line: line - 1, Character: col - 1},
		Active: host.Position{Line: toLine - 1, Character: toCol - 1},
	}
}

// editDocument opens path, places the selection, runs fn and delivers the
// edited document
func editDocument(cmd *cobra.Command, path string, fn func(ctx context.Context, a *app, buf *host.Buffer) error) error {
	a, buf, err := openDocument(cmd, path)
	if err != nil {
		return err
	}
	defer a.close()

	if err := fn(cmd.Context(), a, buf); err != nil {
		return err
	}
	return a.deliver(buf)
}

// openDocument builds the app for path and places the selection from flags
func openDocument(cmd *cobra.Command, path string) (*app, *host.Buffer, error) {
	a, err := newApp(cmd, false)
	if err != nil {
		return nil, nil, err
	}
	buf, err := a.open(cmd, path, false)
	if err != nil {
		a.close()
		return nil, nil, err
	}
	buf.WithEvents(host.NewEvents())
	a.lenses.Register(buf.Events())
	if cmd.Flags().Lookup("col") != nil {
		buf.SetSelection(selectionFromFlags(cmd))
	}
	return a, buf, nil
}

// ============================================================================
// Lists
// ============================================================================

func renumberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "renumber FILE",
		Short: "Fix the numbering of ordered lists",
		Long: `Fix the numbering of ordered lists.

With --line only the list item on that line and the items after it in the
same list are renumbered. Otherwise every ordered list is fixed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, _ := cmd.Flags().GetInt("line")
			return editDocument(cmd, args[0], func(_ context.Context, a *app, buf *host.Buffer) error {
				if line > 0 {
					return a.renumberer.Fix(buf, line-1)
				}
				return a.renumberer.FixAll(buf)
			})
		},
	}
	cmd.Flags().IntP("line", "l", 0, "Renumber from this line (1-based)")
	cmd.Flags().Bool("all", false, "Renumber every list (default)")
	cmd.MarkFlagsMutuallyExclusive("line", "all")
	return cmd
}

// ============================================================================
// Registered commands
// ============================================================================

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run COMMAND FILE",
		Short: "Run a registered command by id or name",
		Args: func(cmd *cobra.Command, args []string) error {
			if list, _ := cmd.Flags().GetBool("list"); list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if list, _ := cmd.Flags().GetBool("list"); list {
				a, err := newApp(cmd, false)
				if err != nil {
					return err
				}
				defer a.close()
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, c := range a.registry.Commands() {
					fmt.Fprintf(w, "%s\t%s\n", c.ID, c.Name)
				}
				return w.Flush()
			}
			return editDocument(cmd, args[1], func(ctx context.Context, a *app, buf *host.Buffer) error {
				return a.registry.Run(ctx, args[0], buf)
			})
		},
	}
	cmd.Flags().Bool("list", false, "List the registered commands")
	addSelectionFlags(cmd)
	return cmd
}

// ============================================================================
// Quick fixes and line tools
// ============================================================================

func actionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actions FILE",
		Short: "List the quick fixes available on a line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, buf, err := openDocument(cmd, args[0])
			if err != nil {
				return err
			}
			defer a.close()
			return printActions(cmd, quickFixes(cmd.Context(), a, buf))
		},
	}
	cmd.Flags().Bool("json", false, "Print actions as JSON")
	addSelectionFlags(cmd)
	return cmd
}

func fixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix FILE [ID]",
		Short: "Apply a quick fix, the preferred one by default",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editDocument(cmd, args[0], func(ctx context.Context, a *app, buf *host.Buffer) error {
				list := quickFixes(ctx, a, buf)
				fix, ok := actions.Preferred(list)
				if len(args) == 2 {
					fix, ok = actions.Find(list, args[1])
				}
				if !ok {
					return fmt.Errorf("no such quick fix on line %d", buf.Selection().Active.Line+1)
				}
				return actions.Apply(ctx, buf, fix, a.registry)
			})
		},
	}
	addSelectionFlags(cmd)
	return cmd
}

func lensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lenses FILE [ID]",
		Short: "List or apply the line tools of a line",
		Long: `List or apply the line tools of a line.

Line tools are listed even when line_tools is off in the configuration.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, buf, err := openDocument(cmd, args[0])
			if err != nil {
				return err
			}
			defer a.close()

			lenses := actions.NewLensProvider(true)
			lenses.Register(buf.Events())
			buf.SetSelection(buf.Selection())
			list := lenses.Provide(buf)

			if len(args) == 1 {
				return printActions(cmd, list)
			}
			lens, ok := actions.Find(list, args[1])
			if !ok {
				return fmt.Errorf("no line tool %q on line %d", args[1], buf.Selection().Active.Line+1)
			}
			if err := actions.Apply(cmd.Context(), buf, lens, a.registry); err != nil {
				return err
			}
			return a.deliver(buf)
		},
	}
	cmd.Flags().Bool("json", false, "Print line tools as JSON")
	addSelectionFlags(cmd)
	return cmd
}

func quickFixes(ctx context.Context, a *app, buf *host.Buffer) []actions.Action {
	line := buf.Selection().Active.Line
	return a.quickFixes.Provide(ctx, buf, host.LineRange(line, len(host.LineText(buf, line))))
}

func printActions(cmd *cobra.Command, list []actions.Action) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if list == nil {
			list = []actions.Action{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, a := range list {
		mark := ""
		if a.Preferred {
			mark = "preferred"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", a.ID, a.Title, mark)
	}
	return w.Flush()
}

// ============================================================================
// Images
// ============================================================================

func toBase64Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "to-base64 IMAGE",
		Short: "Print an image file as a base64 data URI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.close()

			uri, err := a.converter.ToDataURI(cmd.Context(), args[0], "", a.settings.ResizeWidth)
			if err != nil {
				return err
			}
			text := uri
			if md, _ := cmd.Flags().GetBool("markdown"); md {
				alt, _ := cmd.Flags().GetString("alt")
				text = parser.Image{Alt: alt, URL: uri}.Markdown()
			}
			return a.writer.Text(text, a.mode)
		},
	}
	cmd.Flags().BoolP("markdown", "m", false, "Wrap the data URI in image syntax")
	cmd.Flags().String("alt", "", "Alt text used with --markdown")
	return cmd
}

func imagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images FILE",
		Short: "List the images a document references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, buf, err := openDocument(cmd, args[0])
			if err != nil {
				return err
			}
			defer a.close()

			refs := scan.Images([]byte(buf.Text()))
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				if refs == nil {
					refs = []scan.ImageRef{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(refs)
			}
			return printImages(cmd.OutOrStdout(), a, args[0], refs)
		},
	}
	cmd.Flags().Bool("json", false, "Print images as JSON")
	return cmd
}

func printImages(out io.Writer, a *app, docPath string, refs []scan.ImageRef) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LINE\tSTATUS\tSIZE\tURL")
	for _, ref := range refs {
		status, size, url := "inline", "-", ref.URL
		switch {
		case ref.Embedded:
			status = "embedded"
			size = humanize.Bytes(uint64(len(ref.URL)))
			url = truncate(url, 40)
		case ref.Convertible:
			status = "convertible"
		}
		if !ref.Embedded {
			if info, err := a.fs.Stat(ref.URL); err == nil {
				size = humanize.Bytes(uint64(info.Size()))
			} else if info, err := a.fs.Stat(filepath.Join(filepath.Dir(docPath), ref.URL)); err == nil {
				size = humanize.Bytes(uint64(info.Size()))
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", ref.Line+1, status, size, url)
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func embedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed FILE",
		Short: "Replace image paths with base64 data URIs",
		Long: `Replace image paths with base64 data URIs.

Only lines holding nothing but an image are converted. By default the image
on --line is converted; --all converts every such image in the document.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			return editDocument(cmd, args[0], func(ctx context.Context, a *app, buf *host.Buffer) error {
				if !all {
					return embedLine(ctx, a, buf, buf.Selection().Active.Line)
				}
				converted := 0
				for _, ref := range scan.Images([]byte(buf.Text())) {
					if !ref.Convertible {
						continue
					}
					if err := embedLine(ctx, a, buf, ref.Line); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "Skipped line %d: %v\n", ref.Line+1, err)
						continue
					}
					converted++
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Embedded %d image(s)\n", converted)
				return nil
			})
		},
	}
	cmd.Flags().Bool("all", false, "Embed every convertible image")
	addSelectionFlags(cmd)
	return cmd
}

// embedLine converts the image on line through its quick fix
func embedLine(ctx context.Context, a *app, buf *host.Buffer, line int) error {
	text := host.LineText(buf, line)
	img, ok := parser.ImageFromLine(text)
	if !ok {
		return fmt.Errorf("line %d is not a single image", line+1)
	}
	list := a.quickFixes.Provide(ctx, buf, host.LineRange(line, len(text)))
	fix, ok := actions.Find(list, "convert-image-path")
	if !ok {
		return fmt.Errorf("cannot embed %s", img.URL)
	}
	return actions.Apply(ctx, buf, fix, a.registry)
}

// ============================================================================
// Interactive
// ============================================================================

func editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit FILE",
		Short: "Edit a document interactively",
		Long: `Edit a document interactively.

Keys: arrows move, shift+arrows select, "." quick fixes, tab line tools,
":" command palette, ctrl+s save, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.close()

			buf, err := a.open(cmd, args[0], true)
			if err != nil {
				return err
			}
			return ui.Run(cmd.Context(), buf, ui.Deps{
				Registry:   a.registry,
				QuickFixes: a.quickFixes,
				Lenses:     a.lenses,
				Renumberer: a.renumberer,
				Logger:     a.logger,
			})
		},
	}
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch PATH...",
		Short: "Renumber ordered lists whenever markdown files are saved",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			w, err := watch.New(watch.Options{
				Fs:       a.fs,
				Settings: flagSettings(cmd, config.Current()),
				Logger:   a.logger,
				OnFixed:  func(path string) { fmt.Fprintf(out, "renumbered %s\n", path) },
			})
			if err != nil {
				return err
			}
			defer w.Close()

			for _, path := range args {
				if err := w.Add(path); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %d path(s), Ctrl+C to stop\n", len(args))
			return w.Run(cmd.Context())
		},
	}
}
