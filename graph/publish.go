// Package graph publishes translated records to the knowledge-graph ingest
// stream.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// IngestSubject is the subject translated records are published to.
const IngestSubject = "graph.ingest.annotation"

// RecordIngestMessage is the message format for graph ingestion. The record
// payload is the same flat JSON-LD node the file serializer emits.
type RecordIngestMessage struct {
	Source    string          `json:"source"`
	Record    json.RawMessage `json:"record"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Publisher sends translated records to NATS.
type Publisher struct {
	conn    *nats.Conn
	source  string
	timeout time.Duration
}

// NewPublisher creates a publisher over an established NATS connection.
// The source tag identifies the producing translator in ingest messages.
func NewPublisher(conn *nats.Conn, source string) *Publisher {
	return &Publisher{
		conn:    conn,
		source:  source,
		timeout: 5 * time.Second,
	}
}

// Connect dials a NATS server and returns a connection suitable for
// NewPublisher.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("bkbit"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return conn, nil
}

// PublishRecords publishes every record as an individual ingest message.
// A nil publisher or connection is a no-op so callers can treat the graph
// sink as optional.
func (p *Publisher) PublishRecords(ctx context.Context, records []any) error {
	if p == nil || p.conn == nil {
		return nil
	}

	now := time.Now()
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		payload, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		msg := RecordIngestMessage{
			Source:    p.source,
			Record:    payload,
			UpdatedAt: now,
		}
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal ingest message: %w", err)
		}
		if err := p.conn.Publish(IngestSubject, data); err != nil {
			return fmt.Errorf("publish ingest message: %w", err)
		}
	}

	if err := p.conn.FlushTimeout(p.timeout); err != nil {
		return fmt.Errorf("flush ingest messages: %w", err)
	}
	return nil
}
