package usecase

import (
	"context"

	"github.com/loopgate/loopgate/internal/domain"
)

// HealthSnapshotOutput contains the computed snapshot.
type HealthSnapshotOutput struct {
	Snapshot domain.HealthSnapshot
}

// HealthSnapshot computes the read-only health aggregate over the state
// store. Nothing is persisted; callers feed the result to dashboards or
// alerting.
type HealthSnapshot struct {
	tasks domain.TaskRepository
}

// NewHealthSnapshot creates a new HealthSnapshot use case.
func NewHealthSnapshot(tasks domain.TaskRepository) *HealthSnapshot {
	return &HealthSnapshot{tasks: tasks}
}

// Execute computes the snapshot. A task is stuck iff it exhausted its
// iteration budget while still active. The stuck rate is measured against
// all tasks ever claimed; the success rate against resolved tasks only.
func (uc *HealthSnapshot) Execute(_ context.Context) (*HealthSnapshotOutput, error) {
	tasks, err := uc.tasks.List(domain.TaskFilter{})
	if err != nil {
		return nil, err
	}

	var active, stuck, completed, resolved int
	for _, t := range tasks {
		if t.Status == domain.StatusActive {
			active++
		}
		if t.IsStuck() {
			stuck++
		}
		if t.Status == domain.StatusArchived {
			resolved++
			if t.Outcome == domain.StatusComplete {
				completed++
			}
		}
	}

	snapshot := domain.HealthSnapshot{
		ActiveCount: active,
		StuckCount:  stuck,
	}
	if len(tasks) > 0 {
		snapshot.StuckRate = float64(stuck) / float64(len(tasks))
	}
	if resolved > 0 {
		snapshot.SuccessRate = float64(completed) / float64(resolved)
	}
	snapshot.Status = domain.ClassifyHealth(snapshot.StuckRate)

	return &HealthSnapshotOutput{Snapshot: snapshot}, nil
}
