package marker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopgate/loopgate/internal/domain"
)

func TestChecker_Done_MarkerPresence(t *testing.T) {
	// Setup
	dir := t.TempDir()
	checker := New(dir)
	task := &domain.Task{ID: "t1", SourceRef: "issue-42"}

	// No marker yet
	done, err := checker.Done(context.Background(), task)
	require.NoError(t, err)
	assert.False(t, done)

	// Producer drops the marker
	require.NoError(t, os.WriteFile(filepath.Join(dir, "issue-42"), nil, 0o600))
	done, err = checker.Done(context.Background(), task)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestChecker_Done_DoesNotCreateMarkers(t *testing.T) {
	dir := t.TempDir()
	checker := New(dir)

	_, err := checker.Done(context.Background(), &domain.Task{SourceRef: "issue-1"})

	require.NoError(t, err)
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestChecker_Done_DotRefsNeverMatchDirectories(t *testing.T) {
	// The marker dir and its parent exist, but no ref may resolve to them.
	dir := t.TempDir()
	checker := New(dir)

	for _, ref := range []string{"", ".", ".."} {
		done, err := checker.Done(context.Background(), &domain.Task{SourceRef: ref})
		require.NoError(t, err)
		assert.False(t, done, "ref %q", ref)
	}
}

func TestChecker_Path_SanitizesRef(t *testing.T) {
	checker := New("/data/done")

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{name: "plain", ref: "issue-42", want: "issue-42"},
		{name: "keeps dots and underscores", ref: "mail_thread.7", want: "mail_thread.7"},
		{name: "slashes replaced", ref: "../../etc/passwd", want: ".._.._etc_passwd"},
		{name: "url ref", ref: "https://tracker/item?id=9", want: "https___tracker_item_id_9"},
		{name: "empty ref", ref: "", want: "_"},
		{name: "current dir ref", ref: ".", want: "_."},
		{name: "parent dir ref", ref: "..", want: "_.."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checker.Path(tt.ref)
			assert.Equal(t, filepath.Join("/data/done", tt.want), got)
			assert.True(t, strings.HasPrefix(got, "/data/done"), "ref must not escape the marker directory")
		})
	}
}
