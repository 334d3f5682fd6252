package analytics

import (
	"holder-flow/internal/behavior"
	"holder-flow/internal/config"
	"holder-flow/internal/timing"
)

// Config holds the parameters of every classifier.
type Config struct {
	// LookbackDays bounds how far before the period start prior positions are fetched.
	// A holder last seen earlier than that counts as new when it reappears.
	LookbackDays                int
	VolatilityThreshold         float64
	CorrelationThreshold        float64
	CoordinationMinParticipants int
	Suspicious                  behavior.SuspiciousParams
	Timing                      timing.Params
	// Workers limits per-holder parallelism; 0 means GOMAXPROCS.
	Workers int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		LookbackDays:                30,
		VolatilityThreshold:         behavior.DefaultVolatilityThreshold,
		CorrelationThreshold:        behavior.DefaultCorrelationThreshold,
		CoordinationMinParticipants: behavior.DefaultMinParticipants,
		Suspicious:                  behavior.DefaultSuspiciousParams(),
		Timing:                      timing.DefaultParams(),
	}
}

// FromSettings builds the classifier config from the analytics section of the application
// config. Timing scores and multiples keep their defaults.
func FromSettings(a config.AnalyticsConfig) Config {
	cfg := DefaultConfig()
	cfg.LookbackDays = a.LookbackDays
	cfg.VolatilityThreshold = a.VolatilityThreshold
	cfg.CorrelationThreshold = a.CorrelationThreshold
	cfg.CoordinationMinParticipants = a.CoordinationMinParticipants
	cfg.Suspicious.MinCorrelation = a.SuspiciousCorrelation
	cfg.Suspicious.MinParticipants = a.SuspiciousParticipants
	cfg.Timing.SignificantMovePct = a.SignificantMovePct
	cfg.Workers = a.Workers
	return cfg
}
