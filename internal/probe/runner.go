package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/samvad-hq/vision-probe/internal/domain"
	"github.com/samvad-hq/vision-probe/internal/imagefile"
	"github.com/samvad-hq/vision-probe/internal/logger"
	"github.com/samvad-hq/vision-probe/pkg/codec"
)

// State is a step of a single probe run.
type State string

const (
	StateIdle             State = "idle"
	StateResolvingInput   State = "resolving_input"
	StateEncoding         State = "encoding"
	StateAwaitingResponse State = "awaiting_response"
	StateSuccess          State = "success"
	StateFailed           State = "failed"
)

// RunSink receives the event of every finished run (history, publishers).
type RunSink interface {
	Accept(ctx context.Context, evt domain.RunEvent) error
}

// Result is the outcome of Runner.Run. Err is nil on success; Warning may be
// set on success when the body had an unexpected shape.
type Result struct {
	Success bool
	State   State
	Trace   []State
	Kind    domain.Kind
	Status  int
	Err     error
	Warning error
	Outcome Outcome
	Event   domain.RunEvent
}

// Runner executes the probe pipeline once per Run call.
type Runner struct {
	probe      Probe
	dispatcher *Dispatcher
	console    *Console
	log        logger.Logger
	sinks      []RunSink
	now        func() time.Time
}

// NewRunner wires a runner. console and log may be nil.
func NewRunner(p Probe, d *Dispatcher, console *Console, log logger.Logger, sinks ...RunSink) *Runner {
	if console == nil {
		console = NewConsole(nil)
	}
	return &Runner{
		probe:      p,
		dispatcher: d,
		console:    console,
		log:        logger.Ensure(log),
		sinks:      sinks,
		now:        time.Now,
	}
}

// Probe returns the probe definition the runner drives.
func (r *Runner) Probe() Probe { return r.probe }

// Console returns the transcript writer.
func (r *Runner) Console() *Console { return r.console }

// Run performs Idle -> Resolving-Input -> Encoding -> Awaiting-Response ->
// {Success | Failed}. Every failure is reported on the console and returned
// in the Result; nothing is retried.
func (r *Runner) Run(ctx context.Context, imagePath, apiURL string) Result {
	start := r.now()
	res := &Result{State: StateIdle, Trace: []State{StateIdle}}
	c := r.console

	c.Header(r.probe, imagePath, apiURL)

	res.move(StateResolvingInput)
	image, err := imagefile.Load(imagePath)
	if err != nil {
		r.reportLoadError(imagePath, err)
		return r.finish(ctx, res, err, imagePath, apiURL, start)
	}

	res.move(StateEncoding)
	c.Step("📷 Converting image to base64...")
	encoded := codec.Encode(image)
	c.OK(fmt.Sprintf("Image converted successfully (size: %d chars)", len(encoded)))

	res.move(StateAwaitingResponse)
	c.Step("🚀 Sending request to API...")
	resp, err := r.dispatcher.Send(ctx, apiURL, r.probe.Envelope(encoded))
	if err != nil {
		r.reportTransportError(apiURL, err)
		return r.finish(ctx, res, err, imagePath, apiURL, start)
	}

	res.Status = resp.StatusCode()
	body := resp.Body()
	c.Printf("📊 Response Status: %d", res.Status)

	if res.Status != http.StatusOK {
		err := &domain.Error{Kind: domain.KindHTTPError, Op: "post", Status: res.Status, Body: string(body)}
		r.reportStatus(res.Status, body)
		return r.finish(ctx, res, err, imagePath, apiURL, start)
	}

	outcome, err := r.probe.Interpret(ctx, body)
	if err != nil {
		r.reportMalformed(body)
		return r.finish(ctx, res, err, imagePath, apiURL, start)
	}

	res.Outcome = outcome
	res.Warning = outcome.Warning()
	c.OK("API Response received successfully!")
	c.Response(body)
	outcome.Render(c)
	if res.Warning != nil {
		r.log.WarnObj("unexpected response shape", "probe_warning", map[string]any{
			"tool":  r.probe.Tool(),
			"error": res.Warning.Error(),
		})
	}
	return r.finish(ctx, res, nil, imagePath, apiURL, start)
}

func (r *Runner) finish(ctx context.Context, res *Result, err error, imagePath, apiURL string, start time.Time) Result {
	if err != nil {
		res.move(StateFailed)
		res.Err = err
		res.Kind = domain.KindOf(err)
	} else {
		res.move(StateSuccess)
		res.Success = true
	}

	evt := domain.RunEvent{
		RunID:      uuid.NewString(),
		Tool:       r.probe.Tool(),
		ImagePath:  imagePath,
		APIURL:     apiURL,
		Success:    res.Success,
		StatusCode: res.Status,
		StartedAt:  start.UTC(),
		ElapsedMs:  r.now().Sub(start).Milliseconds(),
	}
	if err != nil {
		evt.FailureKind = res.Kind.String()
		evt.Error = err.Error()
	}
	if res.Outcome != nil {
		evt.Outcome = res.Outcome.Value()
	}
	res.Event = evt

	r.log.InfoObj("probe finished", "probe_result", map[string]any{
		"run_id":       evt.RunID,
		"tool":         evt.Tool,
		"success":      evt.Success,
		"failure_kind": evt.FailureKind,
		"status_code":  evt.StatusCode,
		"elapsed_ms":   evt.ElapsedMs,
	})

	var sinkErrs []error
	for _, s := range r.sinks {
		if s == nil {
			continue
		}
		if err := s.Accept(ctx, evt); err != nil {
			sinkErrs = append(sinkErrs, err)
		}
	}
	if err := errors.Join(sinkErrs...); err != nil {
		r.log.ErrorObj("run event delivery failed", "sink_error", map[string]any{
			"run_id": evt.RunID,
			"error":  err.Error(),
		})
	}

	return *res
}

func (res *Result) move(s State) {
	res.State = s
	res.Trace = append(res.Trace, s)
}

func (r *Runner) reportLoadError(imagePath string, err error) {
	if domain.IsKind(err, domain.KindNotFound) {
		r.console.Fail(fmt.Sprintf("Error: Image file '%s' does not exist", imagePath))
		return
	}
	r.console.Fail(fmt.Sprintf("Error reading image: %v", errors.Unwrap(err)))
}

func (r *Runner) reportTransportError(apiURL string, err error) {
	switch domain.KindOf(err) {
	case domain.KindUnreachable:
		r.console.Fail(fmt.Sprintf("Error: Cannot connect to API. Is the server running on %s?", hostOf(apiURL)))
	case domain.KindTimeout:
		r.console.Fail(fmt.Sprintf("Error: Request timed out (%s)", seconds(r.dispatcher.Timeout())))
	default:
		r.console.Fail(fmt.Sprintf("Error: Request failed - %v", errors.Unwrap(err)))
	}
}

func (r *Runner) reportStatus(status int, body []byte) {
	if msg := r.probe.StatusMessage(status); msg != "" {
		r.console.Fail(fmt.Sprintf("Error %d: %s", status, msg))
		r.console.Detail("Response: " + string(body))
		return
	}
	r.console.Fail(fmt.Sprintf("Error %d: %s", status, body))
}

func (r *Runner) reportMalformed(body []byte) {
	r.console.Fail("Error: Invalid JSON response")
	r.console.Detail("Raw response: " + string(body))
	if title := HTMLTitle(body); title != "" {
		r.console.Detail("Page title: " + title)
	}
}

func seconds(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%ds", int64(d/time.Second))
	}
	return d.String()
}
