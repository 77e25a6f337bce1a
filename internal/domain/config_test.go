package domain

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "30m", want: 30 * time.Minute},
		{in: "72h", want: 72 * time.Hour},
		{in: "1h30m", want: 90 * time.Minute},
		{in: "500ms", want: 500 * time.Millisecond},
		{in: "soon", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Std())
		})
	}
}

func TestDuration_MarshalText(t *testing.T) {
	text, err := Duration(90 * time.Minute).MarshalText()

	require.NoError(t, err)
	assert.Equal(t, "1h30m0s", string(text))
}

func TestDataPaths(t *testing.T) {
	dataDir := DataDir("/work/project")
	assert.Equal(t, filepath.Join("/work/project", ".loopgate"), dataDir)
	assert.Equal(t, filepath.Join(dataDir, "logs", "loopgate.log"), GlobalLogPath(dataDir))
	assert.Equal(t, filepath.Join(dataDir, "logs", "task-abc.log"), TaskLogPath(dataDir, "abc"))
	assert.Equal(t, filepath.Join("/home/u/.config", "loopgate"), GlobalConfigDir("/home/u/.config"))
}
