// Package estimator provides the static effort-estimation table.
package estimator

import "github.com/loopgate/loopgate/internal/domain"

// Ensure Table implements domain.Estimator.
var _ domain.Estimator = (*Table)(nil)

// defaultTable maps task-type labels to advisory effort estimates.
var defaultTable = map[string]domain.Estimate{
	"triage":   {Tier: domain.TierTrivial, EstimatedSteps: 2, EstimatedMinutes: 5},
	"reply":    {Tier: domain.TierSimple, EstimatedSteps: 3, EstimatedMinutes: 10},
	"draft":    {Tier: domain.TierSimple, EstimatedSteps: 4, EstimatedMinutes: 15},
	"research": {Tier: domain.TierMedium, EstimatedSteps: 8, EstimatedMinutes: 45},
	"reconcile": {
		Tier: domain.TierMedium, EstimatedSteps: 10, EstimatedMinutes: 60,
	},
	"build": {Tier: domain.TierComplex, EstimatedSteps: 15, EstimatedMinutes: 120},
}

// unknownEstimate is the fallback for task types not in the table.
var unknownEstimate = domain.Estimate{
	Tier:             domain.TierMedium,
	EstimatedSteps:   6,
	EstimatedMinutes: 30,
}

// Table is a lookup table keyed by task-type label. Estimates are purely
// advisory and never gate execution.
type Table struct {
	rows map[string]domain.Estimate
}

// New creates a Table from the built-in defaults merged with overrides
// (typically the [estimator] config section). Overrides win per type.
func New(overrides map[string]domain.Estimate) *Table {
	rows := make(map[string]domain.Estimate, len(defaultTable)+len(overrides))
	for k, v := range defaultTable {
		rows[k] = v
	}
	for k, v := range overrides {
		rows[k] = v
	}
	return &Table{rows: rows}
}

// Estimate returns the estimate for the given task type, or a sane default
// for unknown types.
func (t *Table) Estimate(taskType string) domain.Estimate {
	if e, ok := t.rows[taskType]; ok {
		return e
	}
	return unknownEstimate
}
