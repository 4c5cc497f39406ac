package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gubarz/mdassist/internal/config"
)

var enabled = config.Settings{AutoRenumber: true, ListMarker: "ordered"}

func TestFixFile(t *testing.T) {
	tests := []struct {
		name     string
		settings config.Settings
		text     string
		expected string
		changed  bool
	}{
		{
			name:     "renumbers",
			settings: enabled,
			text:     "# List\n3. a\n3. b\n",
			expected: "# List\n1. a\n2. b\n",
			changed:  true,
		},
		{
			name:     "already numbered",
			settings: enabled,
			text:     "1. a\n2. b\n",
			expected: "1. a\n2. b\n",
		},
		{
			name:     "disabled in config",
			settings: config.Settings{AutoRenumber: false, ListMarker: "ordered"},
			text:     "3. a\n3. b\n",
			expected: "3. a\n3. b\n",
		},
		{
			name:     "disabled in front matter",
			settings: enabled,
			text:     "---\nmdassist:\n  auto_renumber: false\n---\n3. a\n3. b\n",
			expected: "---\nmdassist:\n  auto_renumber: false\n---\n3. a\n3. b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/notes/a.md", []byte(tt.text), 0o644))

			w, err := New(Options{Fs: fs, Settings: tt.settings})
			require.NoError(t, err)
			defer w.Close()

			changed, err := w.FixFile("/notes/a.md")
			require.NoError(t, err)
			assert.Equal(t, tt.changed, changed)

			data, err := afero.ReadFile(fs, "/notes/a.md")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(data))
		})
	}
}

func TestFixFileMissing(t *testing.T) {
	w, err := New(Options{Fs: afero.NewMemMapFs(), Settings: enabled})
	require.NoError(t, err)
	defer w.Close()

	changed, err := w.FixFile("/gone.md")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestIsMarkdown(t *testing.T) {
	assert.True(t, IsMarkdown("a.md"))
	assert.True(t, IsMarkdown("a.MARKDOWN"))
	assert.False(t, IsMarkdown("a.txt"))
}

func TestAddRejectsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	w, err := New(Options{Settings: enabled})
	require.NoError(t, err)
	defer w.Close()

	assert.Error(t, w.Add(path))
	assert.Error(t, w.Add(filepath.Join(dir, "missing.md")))
}

func TestRunRenumbersOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.md")
	require.NoError(t, os.WriteFile(path, []byte("1. a\n"), 0o644))

	fixed := make(chan string, 4)
	w, err := New(Options{
		Settings: enabled,
		Debounce: 20 * time.Millisecond,
		OnFixed:  func(p string) { fixed <- p },
	})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Add(dir))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(path, []byte("4. a\n4. b\n"), 0o644))

	select {
	case p := <-fixed:
		assert.Equal(t, path, p)
	case <-time.After(5 * time.Second):
		t.Fatal("file was not fixed")
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1. a\n2. b\n", string(data))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
