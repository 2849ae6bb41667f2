// Package command posts JSON commands to the device-control server.
//
// Delivery is best effort: a command is sent at most once, without retries,
// and its outcome is only logged.
package command

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/ISim/Arduino/smarthome/metrics"
)

type Dispatcher struct {
	client  *resty.Client
	metrics metrics.Collector
	wg      sync.WaitGroup
}

// New creates a dispatcher. A zero timeout means requests never time out.
func New(timeout time.Duration, collector metrics.Collector) *Dispatcher {
	client := resty.New().
		SetHeader("Content-Type", "application/json").
		SetRetryCount(0)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	if collector == nil {
		collector = metrics.Noop()
	}
	return &Dispatcher{client: client, metrics: collector}
}

// Send posts payload as JSON to target and returns the raw response.
func (d *Dispatcher) Send(ctx context.Context, target string, payload interface{}) (*resty.Response, error) {
	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(target)
	if err != nil {
		return nil, fmt.Errorf("post %s failed: %w", target, err)
	}
	return resp, nil
}

// Dispatch sends payload in the background. The response or the transport
// error is logged; nothing is reported back to the caller.
func (d *Dispatcher) Dispatch(target string, payload interface{}) {
	endpoint := target
	if u, err := url.Parse(target); err == nil {
		endpoint = u.Path
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		resp, err := d.Send(context.Background(), target, payload)
		if err != nil {
			d.metrics.IncCommand(endpoint, metrics.OutcomeFailed)
			log.Error().Err(err).Str("url", target).Msg("Command dispatch failed")
			return
		}

		d.metrics.IncCommand(endpoint, metrics.OutcomeSent)
		log.Info().
			Str("url", target).
			Int("status", resp.StatusCode()).
			Str("body", resp.String()).
			Dur("took", resp.Time()).
			Msg("Command response")
	}()
}

// Wait blocks until all dispatched commands have completed.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
