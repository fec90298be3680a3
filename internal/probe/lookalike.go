package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/samvad-hq/vision-probe/internal/domain"
	"github.com/samvad-hq/vision-probe/internal/logger"
)

const defaultRenderedMatches = 5

// PhotoFinder resolves a profile photo URL for a celebrity name. An empty
// URL with a nil error means no photo is known.
type PhotoFinder interface {
	PhotoURL(ctx context.Context, name string) (string, error)
}

// LookalikeProbe targets the celebrity matcher: the Base64 text is posted
// verbatim with an image/jpeg content type and answered by a JSON array of
// {"name": ..., "similarity": 0..1}.
type LookalikeProbe struct {
	maxRendered int
	photos      PhotoFinder
	log         logger.Logger
}

var _ Probe = (*LookalikeProbe)(nil)

// NewLookalikeProbe renders at most maxRendered matches. photos may be nil.
func NewLookalikeProbe(maxRendered int, photos PhotoFinder, log logger.Logger) *LookalikeProbe {
	if maxRendered <= 0 {
		maxRendered = defaultRenderedMatches
	}
	return &LookalikeProbe{maxRendered: maxRendered, photos: photos, log: logger.Ensure(log)}
}

func (*LookalikeProbe) Tool() string  { return domain.ToolLookalike }
func (*LookalikeProbe) Title() string { return "Celebrity Lookalike API" }
func (*LookalikeProbe) Icon() string  { return "🎭" }

// Envelope keeps the service's historical contract: text body, image/jpeg header.
func (*LookalikeProbe) Envelope(encoded string) Request {
	return Request{ContentType: "image/jpeg", Body: encoded}
}

func (*LookalikeProbe) StatusMessage(status int) string {
	switch status {
	case 400:
		return "Bad image data format"
	case 422:
		return "Image too large or invalid"
	default:
		return ""
	}
}

// Interpret accepts any JSON body. Non-arrays succeed with a KindUnexpectedShape
// warning; malformed elements are flagged individually.
func (p *LookalikeProbe) Interpret(ctx context.Context, body []byte) (Outcome, error) {
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, malformed(body, err)
	}

	list, ok := parsed.([]any)
	if !ok {
		return &lookalikeOutcome{
			raw:     parsed,
			warning: unexpectedShape(fmt.Errorf("expected array, got %s", jsonType(parsed))),
		}, nil
	}

	out := &lookalikeOutcome{raw: parsed, isList: true, total: len(list)}
	for i, elem := range list {
		if i >= p.maxRendered {
			break
		}
		out.matches = append(out.matches, ParseMatch(i+1, elem))
	}
	p.attachPhotos(ctx, out.matches)
	return out, nil
}

func (p *LookalikeProbe) attachPhotos(ctx context.Context, matches []domain.Match) {
	if p.photos == nil {
		return
	}
	for i := range matches {
		if !matches[i].Valid {
			continue
		}
		photo, err := p.photos.PhotoURL(ctx, matches[i].Name)
		if err != nil {
			p.log.WarnObj("celebrity photo lookup failed", "photo_error", map[string]any{
				"name":  matches[i].Name,
				"error": err.Error(),
			})
			continue
		}
		matches[i].PhotoURL = photo
	}
}

// ParseMatch validates one response element.
func ParseMatch(rank int, elem any) domain.Match {
	m := domain.Match{Rank: rank, Raw: elem}
	obj, ok := elem.(map[string]any)
	if !ok {
		m.Problem = "expected object, got " + jsonType(elem)
		return m
	}
	name, ok := obj["name"].(string)
	if !ok {
		m.Problem = "name must be a string"
		return m
	}
	sim, ok := obj["similarity"].(float64)
	if !ok {
		m.Problem = "similarity must be a number"
		return m
	}
	if sim < 0 || sim > 1 || math.IsNaN(sim) {
		m.Problem = "similarity out of range [0,1]"
		return m
	}
	m.Name, m.Similarity, m.Valid = name, sim, true
	return m
}

// Percent formats a similarity as a percentage rounded to one decimal place.
func Percent(similarity float64) string {
	return strconv.FormatFloat(math.Round(similarity*1000)/10, 'f', 1, 64)
}

type lookalikeOutcome struct {
	raw     any
	isList  bool
	total   int
	matches []domain.Match
	warning error
}

// Matches returns the rendered (at most maxRendered) matches.
func (o *lookalikeOutcome) Matches() []domain.Match { return o.matches }

// Total is the number of elements in the response array.
func (o *lookalikeOutcome) Total() int { return o.total }

func (o *lookalikeOutcome) Warning() error { return o.warning }

func (o *lookalikeOutcome) Value() any {
	if !o.isList {
		return o.raw
	}
	return map[string]any{"total": o.total, "matches": o.matches}
}

func (o *lookalikeOutcome) Render(c *Console) {
	if !o.isList {
		c.Warn("Unexpected response format: " + jsonType(o.raw))
		return
	}
	if o.total == 0 {
		c.Warn("No celebrity matches found (empty response)")
		return
	}
	c.Printf("🎭 Found %d celebrity matches:", o.total)
	for _, m := range o.matches {
		if !m.Valid {
			c.Printf("  %d. Invalid match format: %s", m.Rank, compact(m.Raw))
			continue
		}
		c.Printf("  %d. %s - %s%% similarity", m.Rank, m.Name, Percent(m.Similarity))
		if m.PhotoURL != "" {
			c.Printf("     📸 %s", m.PhotoURL)
		}
	}
}
