package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrategy_IsValid(t *testing.T) {
	assert.True(t, StrategySequential.IsValid())
	assert.True(t, StrategyParallel.IsValid())
	assert.False(t, Strategy("round-robin").IsValid())
	assert.False(t, Strategy("").IsValid())
}

func TestDeriveGroupStatus(t *testing.T) {
	member := func(status, outcome Status) *Task {
		return &Task{Status: status, Outcome: outcome}
	}

	tests := []struct {
		name    string
		members []*Task
		want    GroupStatus
	}{
		{
			name: "no members is pending",
			want: GroupPending,
		},
		{
			name:    "all complete",
			members: []*Task{member(StatusComplete, ""), member(StatusComplete, "")},
			want:    GroupComplete,
		},
		{
			name:    "archived members count by outcome",
			members: []*Task{member(StatusArchived, StatusComplete), member(StatusArchived, StatusComplete)},
			want:    GroupComplete,
		},
		{
			name:    "any blocked member fails the group",
			members: []*Task{member(StatusComplete, ""), member(StatusBlocked, "")},
			want:    GroupFailed,
		},
		{
			name:    "archived blocked fails the group",
			members: []*Task{member(StatusArchived, StatusComplete), member(StatusArchived, StatusBlocked)},
			want:    GroupFailed,
		},
		{
			name:    "active member keeps the group running",
			members: []*Task{member(StatusComplete, ""), member(StatusActive, "")},
			want:    GroupRunning,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveGroupStatus(tt.members))
		})
	}
}
