package probe

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samvad-hq/vision-probe/internal/domain"
)

// SpiritProbe targets the spirit animal classifier: a JSON envelope
// {"image": "<b64>"} answered by {"animal": ..., "reason": ...}.
type SpiritProbe struct{}

var _ Probe = SpiritProbe{}

func (SpiritProbe) Tool() string  { return domain.ToolSpirit }
func (SpiritProbe) Title() string { return "Spirit Animal API" }
func (SpiritProbe) Icon() string  { return "🦁" }

type spiritEnvelope struct {
	Image string `json:"image"`
}

func (SpiritProbe) Envelope(encoded string) Request {
	return Request{ContentType: "application/json", Body: spiritEnvelope{Image: encoded}}
}

func (SpiritProbe) StatusMessage(int) string { return "" }

// Interpret accepts any JSON body. A body without both "animal" and "reason"
// keys still succeeds but carries a KindUnexpectedShape warning.
func (SpiritProbe) Interpret(_ context.Context, body []byte) (Outcome, error) {
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, malformed(body, err)
	}

	out := &spiritOutcome{raw: parsed}
	obj, ok := parsed.(map[string]any)
	if !ok {
		out.warning = unexpectedShape(fmt.Errorf("expected object, got %s", jsonType(parsed)))
		return out, nil
	}
	animal, hasAnimal := obj["animal"]
	reason, hasReason := obj["reason"]
	if !hasAnimal || !hasReason {
		out.warning = unexpectedShape(fmt.Errorf("missing animal or reason"))
		return out, nil
	}

	out.animal = &domain.SpiritAnimal{Animal: text(animal), Reason: text(reason)}
	return out, nil
}

type spiritOutcome struct {
	raw     any
	animal  *domain.SpiritAnimal
	warning error
}

// Animal returns the extracted result, nil when the shape was unexpected.
func (o *spiritOutcome) Animal() *domain.SpiritAnimal { return o.animal }

func (o *spiritOutcome) Warning() error { return o.warning }

func (o *spiritOutcome) Value() any {
	if o.animal != nil {
		return o.animal
	}
	return o.raw
}

func (o *spiritOutcome) Render(c *Console) {
	if o.animal == nil {
		c.Warn("Unexpected response format: " + compact(o.raw))
		return
	}
	c.Section("✨ Your Spirit Animal:")
	c.Printf("  - Animal: %s", o.animal.Animal)
	c.Printf("  - Reason: %s", o.animal.Reason)
}
