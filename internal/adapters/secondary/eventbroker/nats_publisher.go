package eventbroker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const SubjectPrefetchRequested = "feed.prefetch_requested"

type NatsPublisher struct {
	nc *nats.Conn
}

func NewNatsPublisher(nc *nats.Conn) *NatsPublisher {
	return &NatsPublisher{nc: nc}
}

// Structure de l'event (contract implicite avec le consumer de prefetch)
type PrefetchRequestedEvent struct {
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id"`
	BatchNumber int       `json:"batch_number"`
	RequestedAt time.Time `json:"requested_at"`
}

func (p *NatsPublisher) PublishPrefetchRequested(ctx context.Context, userID string, batchNumber int) error {
	event := PrefetchRequestedEvent{
		EventID:     uuid.New().String(),
		UserID:      userID,
		BatchNumber: batchNumber,
		RequestedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling error: %w", err)
	}

	msg := &nats.Msg{
		Subject: SubjectPrefetchRequested,
		Data:    data,
		Header:  nats.Header{},
	}
	// Injection du trace ID dans les headers NATS : le worker de prefetch
	// héritera du TraceID de la requête de lecture qui l'a déclenché
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))

	slog.Debug("📢 Publishing prefetch request", "user_id", userID, "batch", batchNumber)
	return p.nc.PublishMsg(msg)
}
