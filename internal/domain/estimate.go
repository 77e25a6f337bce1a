package domain

// ComplexityTier buckets tasks by expected difficulty.
type ComplexityTier string

const (
	TierTrivial ComplexityTier = "trivial"
	TierSimple  ComplexityTier = "simple"
	TierMedium  ComplexityTier = "medium"
	TierComplex ComplexityTier = "complex"
)

// Estimate is an advisory effort projection for a task descriptor.
// Estimates inform triage only; max_iterations always comes from the
// task's own configuration, never from here.
type Estimate struct {
	Tier             ComplexityTier `json:"complexity_tier" toml:"complexity_tier"`
	EstimatedSteps   int            `json:"estimated_steps" toml:"estimated_steps"`
	EstimatedMinutes int            `json:"estimated_minutes" toml:"estimated_minutes"`
}
