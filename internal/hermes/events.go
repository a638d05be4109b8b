package hermes

import "time"

type CaseCreatedEvent struct {
	CaseID     string `json:"case_id"`
	Name       string `json:"name"`
	Statements int    `json:"statements"`
	MaxLevel   int    `json:"max_level"`
}

type CaseEvaluatedEvent struct {
	CaseID    string            `json:"case_id"`
	Scenarios int               `json:"scenarios"`
	Options   int               `json:"options"`
	Highest   map[string]string `json:"highest_weighted_options"`
	Warnings  []string          `json:"warnings,omitempty"`
}

type WeightModifiedEvent struct {
	CaseID   string  `json:"case_id"`
	Field    string  `json:"field"`
	Element  string  `json:"element"`
	OldValue float64 `json:"old_value"`
	NewValue float64 `json:"new_value"`
}

type CaseOptimizedEvent struct {
	CaseID           string    `json:"case_id"`
	Scenario         string    `json:"scenario"`
	BaseOption       string    `json:"base_option"`
	BaseAppreciation float64   `json:"base_appreciation"`
	Option           string    `json:"option"`
	Values           []float64 `json:"values"`
	Appreciation     float64   `json:"appreciation"`
	Gain             float64   `json:"gain"`
	Trials           int       `json:"trials"`
}

type CaseFailedEvent struct {
	CaseID    string `json:"case_id"`
	Operation string `json:"operation"`
	Error     string `json:"error"`
}

// OptimizeRequestEvent asks a running service to optimize a stored case.
type OptimizeRequestEvent struct {
	CaseID          string `json:"case_id"`
	Scenario        string `json:"scenario"`
	OptionName      string `json:"option_name"`
	MaxCombinations int    `json:"max_combinations,omitempty"`
}

type StatsEvent struct {
	Cases         int       `json:"cases"`
	Evaluations   int       `json:"evaluations"`
	Optimizations int       `json:"optimizations"`
	Timestamp     time.Time `json:"timestamp"`
}
