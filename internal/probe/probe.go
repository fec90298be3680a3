// Package probe drives a single image probe against a remote classification
// endpoint: load, encode, POST once, interpret, report.
package probe

import (
	"context"
	"net/url"
)

// Request is the envelope a probe sends for an encoded image.
type Request struct {
	ContentType string
	Body        any
}

// Outcome is the interpreted success body of a probe.
type Outcome interface {
	// Render prints the result lines for the user.
	Render(c *Console)
	// Warning is non-nil when the body parsed but had an unexpected shape.
	Warning() error
	// Value is the structured result recorded in run events.
	Value() any
}

// Probe describes one endpoint contract.
type Probe interface {
	Tool() string
	Title() string
	Icon() string
	Envelope(encoded string) Request
	Interpret(ctx context.Context, body []byte) (Outcome, error)
	// StatusMessage returns a tailored description for a non-200 status, or "".
	StatusMessage(status int) string
}

func hostOf(apiURL string) string {
	u, err := url.Parse(apiURL)
	if err != nil || u.Host == "" {
		return apiURL
	}
	return u.Host
}
