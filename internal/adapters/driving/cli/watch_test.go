package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchTargets_Follow(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	writeFile(t, filepath.Join(dir, "sub", "b.txt"), "b")
	writeFile(t, filepath.Join(dir, ".git", "HEAD"), "ref")

	var added []string
	targets := newWatchTargets(func(p string) error {
		added = append(added, p)
		return nil
	})

	require.NoError(t, targets.follow(dir))

	assert.ElementsMatch(t, []string{dir, filepath.Join(dir, "sub")}, added)
	assert.True(t, targets.dirs[dir])
	assert.False(t, targets.dirs[filepath.Join(dir, ".git")])
}

func TestWatchTargets_FollowFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	writeFile(t, path, "a")

	var added []string
	targets := newWatchTargets(func(p string) error {
		added = append(added, p)
		return nil
	})

	require.NoError(t, targets.follow(path))

	assert.Equal(t, []string{dir}, added)
	assert.True(t, targets.files[path])
	assert.False(t, targets.dirs[dir], "a file's parent is watched but not followed")
}

func TestWatchTargets_FollowMissing(t *testing.T) {
	targets := newWatchTargets(nil)
	err := targets.follow(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatchTargets_Handle(t *testing.T) {
	tests := []struct {
		name       string
		setupFile  bool
		setupDir   bool
		hidden     bool
		outside    bool
		operation  fsnotify.Op
		wantIngest bool
	}{
		{name: "create file", setupFile: true, operation: fsnotify.Create, wantIngest: true},
		{name: "write file", setupFile: true, operation: fsnotify.Write, wantIngest: true},
		{name: "write and chmod", setupFile: true, operation: fsnotify.Write | fsnotify.Chmod, wantIngest: true},
		{name: "chmod only", setupFile: true, operation: fsnotify.Chmod},
		{name: "remove", operation: fsnotify.Remove},
		{name: "rename", operation: fsnotify.Rename},
		{name: "create directory", setupDir: true, operation: fsnotify.Create},
		{name: "hidden file", setupFile: true, hidden: true, operation: fsnotify.Create},
		{name: "unfollowed directory", setupFile: true, outside: true, operation: fsnotify.Write},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			targets := newWatchTargets(func(string) error { return nil })
			require.NoError(t, targets.follow(dir))

			base := dir
			if tt.outside {
				base = t.TempDir()
			}
			name := "doc.txt"
			if tt.hidden {
				name = ".doc.txt"
			}
			path := filepath.Join(base, name)

			switch {
			case tt.setupDir:
				require.NoError(t, os.Mkdir(path, 0o755))
			case tt.setupFile:
				writeFile(t, path, "content")
			}

			got, ok := targets.handle(fsnotify.Event{Name: path, Op: tt.operation})

			assert.Equal(t, tt.wantIngest, ok)
			if tt.wantIngest {
				assert.Equal(t, path, got)
			}
		})
	}
}

func TestWatchTargets_HandleFollowsNewDirectory(t *testing.T) {
	dir := t.TempDir()
	var added []string
	targets := newWatchTargets(func(p string) error {
		added = append(added, p)
		return nil
	})
	require.NoError(t, targets.follow(dir))

	sub := filepath.Join(dir, "new")
	require.NoError(t, os.Mkdir(sub, 0o755))

	_, ok := targets.handle(fsnotify.Event{Name: sub, Op: fsnotify.Create})

	assert.False(t, ok)
	assert.True(t, targets.dirs[sub])
	assert.Contains(t, added, sub)

	path := filepath.Join(sub, "later.txt")
	writeFile(t, path, "x")
	got, ok := targets.handle(fsnotify.Event{Name: path, Op: fsnotify.Create})
	assert.True(t, ok)
	assert.Equal(t, path, got)
}
