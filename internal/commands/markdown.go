package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/gubarz/mdassist/internal/actions"
	"github.com/gubarz/mdassist/internal/edit"
	"github.com/gubarz/mdassist/internal/host"
	"github.com/gubarz/mdassist/internal/lists"
	"github.com/gubarz/mdassist/internal/parser"
)

// ErrNoPathPicker is returned by the insert path command when no way of
// choosing a file was configured
var ErrNoPathPicker = errors.New("no path picker configured")

// PathPicker chooses the file whose path is inserted into the document at
// docPath. An empty result cancels the insertion.
type PathPicker func(ctx context.Context, docPath string) (string, error)

// Deps are the collaborators of the markdown commands
type Deps struct {
	Renumberer *lists.Renumberer
	QuickFixes *actions.QuickFixProvider
	Candidates []parser.MarkerKind
	PickPath   PathPicker
	Logger     *zap.Logger
}

// Markdown returns a registry with every markdown command
func Markdown(deps Deps) *Registry {
	if deps.Renumberer == nil {
		deps.Renumberer = lists.NewRenumberer(lists.DefaultSettings(), deps.Logger)
	}
	if deps.QuickFixes == nil {
		deps.QuickFixes = actions.NewQuickFixProvider(nil, 0, deps.Logger)
	}
	r := NewRegistry(deps.Logger)
	rn := deps.Renumberer

	// ========================================================================
	// Inline formatting
	// ========================================================================

	r.Register("bold", "Markdown: Toggle Bold", format(edit.Bold))
	r.Register("italic", "Markdown: Toggle Italic", format(edit.Italic))
	r.Register("strike", "Markdown: Toggle Strikethrough", format(edit.Strikethrough))
	r.Register("math-span", "Markdown: Toggle Math Span", format(edit.MathSpan))
	r.Register("math-block", "Markdown: Toggle Math Block", block(edit.MathBlockSnippet))
	r.Register("code-span", "Markdown: Toggle Code Span", format(edit.CodeSpan))
	r.Register("code-block", "Markdown: Toggle Code Block", block(edit.CodeBlockSnippet))

	// ========================================================================
	// Blocks
	// ========================================================================

	r.Register("container", "Markdown: Toggle Container Block", container(edit.InfoContainer))
	r.Register("details", "Markdown: Toggle Detail Block", container(edit.DetailsContainer))
	r.Register("quote", "Markdown: Toggle Quote Block", plain(edit.ToggleQuote))
	r.Register("link", "Markdown: Insert Link", block(edit.LinkSnippet))
	r.Register("image", "Markdown: Insert Image", block(edit.ImageSnippet))
	r.Register("path", "Markdown: Insert Path", func(ctx context.Context, ed host.Editor) error {
		if deps.PickPath == nil {
			return ErrNoPathPicker
		}
		target, err := deps.PickPath(ctx, ed.Document().Path())
		if err != nil {
			return err
		}
		return edit.InsertPath(ed, target)
	})
	r.Register("link-ref", "Markdown: Insert Link Reference", plain(edit.InsertLinkReference))
	r.Register("footnote", "Markdown: Insert Footnotes", plain(edit.InsertFootnote))
	r.Register("delete-link", "Markdown: Delete Link", plain(edit.DeleteLink))
	r.Register("heading-up", "Markdown: Increase Header Level", plain(edit.HeadingUp))
	r.Register("heading-down", "Markdown: Decrease Header Level", plain(edit.HeadingDown))
	r.Register("table", "Markdown: Insert Table", block(edit.TableSnippet))
	r.Register("divider", "Markdown: Insert Divider", afterLine(edit.DividerSnippet))
	r.Register("newline", "Markdown: Insert New Line", afterLine(edit.NewLineSnippet))
	r.Register("mermaid", "Markdown: Insert Mermaid", block(edit.MermaidSnippet))

	// ========================================================================
	// Lists
	// ========================================================================

	r.Register("ordered-list", "Markdown: Toggle Order List", toggleList(rn, parser.MarkerNumbered))
	r.Register("unordered-list", "Markdown: Toggle Unorder List", toggleList(rn, parser.MarkerDash))
	r.Register("check-list", "Markdown: Toggle Check List", toggleList(rn, parser.MarkerTask))
	r.Register("cycle-list", "Markdown: Cycle List Marker", func(_ context.Context, ed host.Editor) error {
		return rn.Cycle(ed, deps.Candidates)
	})
	r.Register("renumber", "Markdown: Renumber List", func(_ context.Context, ed host.Editor) error {
		return rn.Fix(ed, lists.FromSelection)
	})
	r.Register("renumber-all", "Markdown: Renumber All Lists", func(_ context.Context, ed host.Editor) error {
		return rn.FixAll(ed)
	})

	// ========================================================================
	// Images
	// ========================================================================

	r.Register("to-base64", "Markdown: Convert Image To Base64", func(ctx context.Context, ed host.Editor) error {
		line := ed.Selection().Active.Line
		fix, ok := actions.Preferred(deps.QuickFixes.Provide(ctx, ed.Document(), host.LineRange(line, 0)))
		if !ok {
			return nil
		}
		return actions.Apply(ctx, ed, fix, r)
	})

	return r
}

func format(marker string) Func {
	return func(_ context.Context, ed host.Editor) error {
		return edit.ToggleFormatting(ed, marker)
	}
}

func block(snip string) Func {
	return func(_ context.Context, ed host.Editor) error {
		return edit.InsertBlock(ed, snip)
	}
}

func afterLine(snip string) Func {
	return func(_ context.Context, ed host.Editor) error {
		return edit.InsertAfterLine(ed, snip)
	}
}

func container(c edit.Container) Func {
	return func(_ context.Context, ed host.Editor) error {
		return edit.ToggleContainer(ed, c)
	}
}

func plain(fn func(host.Editor) error) Func {
	return func(_ context.Context, ed host.Editor) error {
		return fn(ed)
	}
}

func toggleList(rn *lists.Renumberer, kind parser.MarkerKind) Func {
	return func(_ context.Context, ed host.Editor) error {
		return rn.Toggle(ed, kind)
	}
}
