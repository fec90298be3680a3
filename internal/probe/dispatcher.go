package probe

import (
	"context"
	"time"

	"github.com/samvad-hq/vision-probe/internal/domain"
	"github.com/samvad-hq/vision-probe/pkg/httpclient"
)

// Dispatcher performs exactly one POST per call and classifies transport failures.
type Dispatcher struct {
	client  httpclient.Client
	timeout time.Duration
}

// NewDispatcher returns a dispatcher bounded by timeout. A nil client gets a
// resty client with the same timeout.
func NewDispatcher(client httpclient.Client, timeout time.Duration) *Dispatcher {
	if client == nil {
		client = httpclient.NewRestyClient(timeout)
	}
	return &Dispatcher{client: client, timeout: timeout}
}

// Timeout returns the request bound.
func (d *Dispatcher) Timeout() time.Duration { return d.timeout }

// Send posts req to apiURL. Errors carry KindTimeout, KindUnreachable or
// KindTransportFailure.
func (d *Dispatcher) Send(ctx context.Context, apiURL string, req Request) (httpclient.Response, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	headers := map[string]string{"Content-Type": req.ContentType}
	resp, err := d.client.Post(ctx, apiURL, headers, req.Body)
	if err != nil {
		switch {
		case httpclient.IsTimeout(err):
			return nil, domain.NewError(domain.KindTimeout, "post", err)
		case httpclient.IsUnreachable(err):
			return nil, domain.NewError(domain.KindUnreachable, "post", err)
		default:
			return nil, domain.NewError(domain.KindTransportFailure, "post", err)
		}
	}
	return resp, nil
}
