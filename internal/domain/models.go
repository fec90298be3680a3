// Package domain contains the probe models and error taxonomy shared across packages.
package domain

import "time"

// Tool identifiers used in run events and history keys.
const (
	ToolSpirit    = "spirit"
	ToolLookalike = "lookalike"
)

// SpiritAnimal is the success body of the spirit animal endpoint.
type SpiritAnimal struct {
	Animal string `json:"animal"`
	Reason string `json:"reason"`
}

// Match is one element of a lookalike response. Valid is false when the
// element did not have a string name and a numeric similarity in [0,1];
// Problem then says why and Raw keeps the element as received.
type Match struct {
	Rank       int     `json:"rank"`
	Name       string  `json:"name,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
	PhotoURL   string  `json:"photo_url,omitempty"`
	Valid      bool    `json:"valid"`
	Problem    string  `json:"problem,omitempty"`
	Raw        any     `json:"-"`
}

// RunEvent records the outcome of one probe invocation.
type RunEvent struct {
	RunID       string    `json:"run_id"`
	Tool        string    `json:"tool"`
	ImagePath   string    `json:"image_path"`
	APIURL      string    `json:"api_url"`
	Success     bool      `json:"success"`
	FailureKind string    `json:"failure_kind,omitempty"`
	StatusCode  int       `json:"status_code,omitempty"`
	Error       string    `json:"error,omitempty"`
	Outcome     any       `json:"outcome,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	ElapsedMs   int64     `json:"elapsed_ms"`
}
