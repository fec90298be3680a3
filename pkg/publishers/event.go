package publishers

import (
	"time"

	"github.com/samvad-hq/vision-probe/internal/domain"
)

// Event represents the payload published downstream.
type Event struct {
	Source      string          `json:"source"`
	Run         domain.RunEvent `json:"run"`
	PublishedAt time.Time       `json:"published_at"`
}

// NewEvent constructs an Event for a finished probe run.
func NewEvent(source string, run domain.RunEvent) Event {
	return Event{
		Source:      source,
		Run:         run,
		PublishedAt: time.Now().UTC(),
	}
}

// attributes are the routing attributes attached by message-based sinks.
func (e Event) attributes() map[string]string {
	success := "false"
	if e.Run.Success {
		success = "true"
	}
	return map[string]string{
		"tool":    e.Run.Tool,
		"success": success,
	}
}
