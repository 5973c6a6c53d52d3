package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ad-tracker/video-engagement-sim/internal/db/models"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"categories", "videos", "comments", "run-job", "jobs"}, names)
}

func TestSeedFlagDefaults(t *testing.T) {
	root := newRootCmd()

	tests := []struct {
		command string
		flag    string
		want    string
	}{
		{"videos", "count", "50"},
		{"videos", "batch-size", "100"},
		{"videos", "clear", "false"},
		{"comments", "count", "200"},
		{"comments", "ai-ratio", "0.3"},
		{"comments", "replies-ratio", "0.2"},
		{"comments", "video-id", "0"},
		{"run-job", "category", ""},
	}

	for _, tt := range tests {
		t.Run(tt.command+"/"+tt.flag, func(t *testing.T) {
			cmd, _, err := root.Find([]string{tt.command})
			require.NoError(t, err)

			f := cmd.Flags().Lookup(tt.flag)
			require.NotNil(t, f)
			assert.Equal(t, tt.want, f.DefValue)
		})
	}
}

func TestRunJobRequiresName(t *testing.T) {
	cmd, _, err := newRootCmd().Find([]string{"run-job"})
	require.NoError(t, err)

	assert.Error(t, cmd.Args(cmd, nil))
	assert.NoError(t, cmd.Args(cmd, []string{"videos:update_stats"}))
}

func TestProgressWritesCounter(t *testing.T) {
	var buf bytes.Buffer
	p := progress(&buf, "Videos")

	p(50, 100)
	p(100, 100)

	assert.Equal(t, "\rVideos: 50/100\rVideos: 100/100\n", buf.String())
}

func TestReport(t *testing.T) {
	start := time.Now().Add(-time.Second)

	completed := models.NewJobRun("engagement:cleanup_ai", start)
	completed.Deleted = 3
	completed.Finish(nil, time.Now())

	failed := models.NewJobRun("videos:update_stats", start)
	failed.Attempts = 4
	failed.Finish(errors.New("connection reset"), time.Now())

	skipped := models.NewJobRun("videos:update_stats", start)
	skipped.Skip("job lease held by another run", time.Now())

	tests := []struct {
		name    string
		run     *models.JobRun
		wantErr string
		wantOut string
	}{
		{name: "completed", run: completed, wantOut: "deleted=3"},
		{name: "skipped is not an error", run: skipped, wantOut: "videos:update_stats skipped"},
		{name: "failed exits non-zero", run: failed, wantErr: "failed after 4 attempts: connection reset", wantOut: "error: connection reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := report(&buf, tt.run)

			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
			assert.Contains(t, buf.String(), tt.wantOut)
		})
	}
}
