package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyHealth(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want HealthStatus
	}{
		{name: "zero", rate: 0, want: HealthHealthy},
		{name: "just under five percent", rate: 0.049, want: HealthHealthy},
		{name: "exactly five percent", rate: 0.05, want: HealthWarning},
		{name: "exactly twenty percent", rate: 0.20, want: HealthWarning},
		{name: "just over twenty percent", rate: 0.201, want: HealthCritical},
		{name: "everything stuck", rate: 1.0, want: HealthCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyHealth(tt.rate))
		})
	}
}
