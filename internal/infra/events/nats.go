// Package events publishes pipeline stage transitions to NATS so external
// consumers (a UI, an audit sink) can follow certification progress.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/nats-io/nats.go"

	"github.com/csera5/BlockchainTech/internal/usecase"
)

type Publisher struct {
	conn    *nats.Conn
	subject string
}

func NewPublisher(url, subject string) (*Publisher, error) {
	if url == "" {
		return nil, errors.New("nats url is required")
	}
	if subject == "" {
		subject = "certify.pipeline.stage"
	}
	conn, err := nats.Connect(url, nats.Name("certifyd"))
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, subject: subject}, nil
}

// OnStage publishes the update as JSON. Event delivery is best-effort and
// never fails the pipeline.
func (p *Publisher) OnStage(ctx context.Context, update usecase.StageUpdate) {
	if p == nil || p.conn == nil {
		return
	}
	payload, err := json.Marshal(update)
	if err != nil {
		return
	}
	if err := p.conn.Publish(p.subject, payload); err != nil {
		log.Printf("stage event publish failed: %v", err)
	}
}

func (p *Publisher) Close() {
	if p != nil && p.conn != nil {
		p.conn.Close()
	}
}

var _ usecase.ProgressSink = (*Publisher)(nil)
