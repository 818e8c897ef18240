// Package bus publishes job reports to NATS JetStream for the alerting
// collaborator.
package bus

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/nats-io/nats.go"

	"tradepost/internal/jobs"
)

// SubjectPrefix is where job reports land; the job name is appended.
const SubjectPrefix = "compliance.jobs."

// Bus wraps a NATS JetStream connection for publishing job reports.
type Bus struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// New creates a Bus connected to the provided NATS endpoint.
func New(url string, opts ...nats.Option) (*Bus, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	return &Bus{conn: nc, js: js}, nil
}

// Close shuts down the underlying NATS connection.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}

// PublishResult encodes the report as JSON and publishes it to
// compliance.jobs.<job>.
func (b *Bus) PublishResult(ctx context.Context, res jobs.Result) error {
	if b == nil {
		return errors.New("nil bus")
	}

	data, err := json.Marshal(res)
	if err != nil {
		return err
	}

	_, err = b.js.Publish(SubjectPrefix+res.Job, data, nats.Context(ctx))
	return err
}
