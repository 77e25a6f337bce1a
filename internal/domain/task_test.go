package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTask_LastProgressAt(t *testing.T) {
	created := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	task := &Task{Created: created}

	assert.Equal(t, created, task.LastProgressAt(), "no notes falls back to creation")

	task.Progress = []ProgressEntry{
		{T: created.Add(10 * time.Minute), Note: "first"},
		{T: created.Add(25 * time.Minute), Note: "second"},
	}
	assert.Equal(t, created.Add(25*time.Minute), task.LastProgressAt())
}

func TestTask_IsStuck(t *testing.T) {
	tests := []struct {
		name string
		task Task
		want bool
	}{
		{name: "budget exhausted while active", task: Task{Status: StatusActive, Iteration: 5, MaxIterations: 5}, want: true},
		{name: "budget remaining", task: Task{Status: StatusActive, Iteration: 4, MaxIterations: 5}, want: false},
		{name: "archived with exhausted budget", task: Task{Status: StatusArchived, Iteration: 5, MaxIterations: 5}, want: false},
		{name: "complete is not stuck", task: Task{Status: StatusComplete, Iteration: 5, MaxIterations: 5}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.IsStuck())
		})
	}
}

func TestSourceItem_IsClaimed(t *testing.T) {
	assert.False(t, (&SourceItem{Ref: "issue-1"}).IsClaimed())
	assert.True(t, (&SourceItem{Ref: "issue-1", ClaimedBy: "worker-a"}).IsClaimed())
}
