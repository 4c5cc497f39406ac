// Package commands binds the markdown editing operations to named commands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/gubarz/mdassist/internal/host"
)

// ErrUnknownCommand is returned when no command matches an id or name
var ErrUnknownCommand = errors.New("unknown command")

// Func is the body of a command
type Func func(ctx context.Context, ed host.Editor) error

// Command is a registered operation
type Command struct {
	ID   string // Short stable id, e.g. "bold"
	Name string // Display name, e.g. "Markdown: Toggle Bold"
	Run  Func
}

// Registry holds commands in registration order
type Registry struct {
	commands []Command
	index    map[string]int
	logger   *zap.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{index: make(map[string]int), logger: logger}
}

// Register adds a command. Registering an existing id replaces it.
func (r *Registry) Register(id, name string, fn Func) {
	cmd := Command{ID: id, Name: name, Run: fn}
	i, ok := r.index[id]
	if ok {
		delete(r.index, r.commands[i].Name)
		r.commands[i] = cmd
	} else {
		i = len(r.commands)
		r.commands = append(r.commands, cmd)
	}
	r.index[id] = i
	r.index[name] = i
}

// Lookup finds a command by id or display name
func (r *Registry) Lookup(key string) (Command, bool) {
	i, ok := r.index[key]
	if !ok {
		return Command{}, false
	}
	return r.commands[i], true
}

// Run executes the command named by key on ed
func (r *Registry) Run(ctx context.Context, key string, ed host.Editor) error {
	cmd, ok := r.Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, key)
	}
	r.logger.Debug("run command", zap.String("id", cmd.ID), zap.String("path", ed.Document().Path()))
	if err := cmd.Run(ctx, ed); err != nil {
		r.logger.Warn("command failed", zap.String("id", cmd.ID), zap.Error(err))
		return fmt.Errorf("%s: %w", cmd.ID, err)
	}
	return nil
}

// Commands returns all commands in registration order
func (r *Registry) Commands() []Command {
	return append([]Command(nil), r.commands...)
}

// IDs returns the sorted command ids
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.commands))
	for _, c := range r.commands {
		ids = append(ids, c.ID)
	}
	sort.Strings(ids)
	return ids
}

// Filter returns the commands whose id or name contains every word of
// query, ignoring case
func (r *Registry) Filter(query string) []Command {
	words := strings.Fields(strings.ToLower(query))
	var out []Command
	for _, c := range r.commands {
		hay := strings.ToLower(c.ID + " " + c.Name)
		match := true
		for _, w := range words {
			if !strings.Contains(hay, w) {
				match = false
				break
			}
		}
		if match {
			out = append(out, c)
		}
	}
	return out
}
