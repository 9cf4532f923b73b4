package model

// WhyResult is the answer for one process matched by a why query.
type WhyResult struct {
	PID         int              `json:"pid"`
	ProcessName string           `json:"process_name"`
	Ports       []string         `json:"ports,omitempty"`
	Ancestry    *ProcessAncestry `json:"ancestry,omitempty"`
}
