package dlq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	streamName    = "RODEO_INGEST_DLQ"
	subjectPrefix = "rodeo.ingest.dlq"
)

// JetStreamQueue publishes failed push records to NATS JetStream so they
// survive gateway restarts and can be drained by a replay worker. Safe
// across multiple gateway instances.
type JetStreamQueue struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	written uint64
}

func NewJetStreamQueue(ctx context.Context, natsURL string) (*JetStreamQueue, error) {
	conn, err := nats.Connect(natsURL, nats.Timeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subjectPrefix + ".>"},
		MaxAge:    7 * 24 * time.Hour,
		Retention: jetstream.WorkQueuePolicy,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create dlq stream: %w", err)
	}

	return &JetStreamQueue{conn: conn, js: js}, nil
}

// Write records one failed push. Subject format:
// rodeo.ingest.dlq.<reason>.
func (q *JetStreamQueue) Write(ctx context.Context, record *FailedRecord) error {
	if q == nil {
		return nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal dlq record: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", subjectPrefix, record.Reason)
	if _, err := q.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish dlq record: %w", err)
	}

	atomic.AddUint64(&q.written, 1)
	slog.Debug("DLQ record published",
		slog.String("subject", subject),
		slog.String("filename", record.Filename),
	)
	return nil
}

// Written reports how many records this instance has published.
func (q *JetStreamQueue) Written() uint64 {
	return atomic.LoadUint64(&q.written)
}

func (q *JetStreamQueue) Close() {
	if q != nil && q.conn != nil {
		q.conn.Close()
	}
}
