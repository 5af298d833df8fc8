package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jupiterclapton/reelfeed/internal/core/ports"
)

const (
	SubjectPrefetchRequested      = "feed.prefetch_requested"
	SubjectBulkInteractionChanged = "interaction.bulk_changed"
)

type EventHandler struct {
	recommendations ports.RecommendationService
}

func NewEventHandler(recommendations ports.RecommendationService) *EventHandler {
	return &EventHandler{recommendations: recommendations}
}

// Subscribe branche les deux consumers sur la connexion NATS
func (h *EventHandler) Subscribe(nc *nats.Conn) error {
	if _, err := nc.Subscribe(SubjectPrefetchRequested, h.HandlePrefetchRequested); err != nil {
		return err
	}
	if _, err := nc.Subscribe(SubjectBulkInteractionChanged, h.HandleBulkInteractionChanged); err != nil {
		return err
	}
	return nil
}

// HandlePrefetchRequested construit le batch suivant en tâche de fond.
// Le chemin de lecture n'attend jamais ce travail.
func (h *EventHandler) HandlePrefetchRequested(msg *nats.Msg) {
	// Extraction du contexte de trace depuis les headers NATS : le build du
	// batch apparaît comme enfant de la requête de lecture qui l'a déclenché
	ctx := context.Background()
	ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(msg.Header))

	tracer := otel.Tracer("reelfeed")
	ctx, span := tracer.Start(ctx, "process_prefetch_requested", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	type prefetchRequestedEvent struct {
		EventID     string `json:"event_id"`
		UserID      string `json:"user_id"`
		BatchNumber int    `json:"batch_number"`
	}

	var event prefetchRequestedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		span.RecordError(err)
		slog.Error("❌ Invalid prefetch event format", "error", err)
		return
	}

	slog.Debug("📨 Prefetch request received", "user_id", event.UserID, "batch", event.BatchNumber)

	go func() {
		childCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		if err := h.recommendations.BuildBatch(childCtx, event.UserID, event.BatchNumber); err != nil {
			slog.Error("❌ Prefetch batch build failed",
				"user_id", event.UserID, "batch", event.BatchNumber, "error", err)
		} else {
			slog.Debug("✅ Prefetch batch ready", "user_id", event.UserID, "batch", event.BatchNumber)
		}
	}()
}

// HandleBulkInteractionChanged purge les batchs d'un utilisateur dont les
// interactions ont changé en masse (import, RGPD, modération...)
func (h *EventHandler) HandleBulkInteractionChanged(msg *nats.Msg) {
	ctx := context.Background()
	ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(msg.Header))

	tracer := otel.Tracer("reelfeed")
	ctx, span := tracer.Start(ctx, "process_bulk_interaction_changed", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	type bulkInteractionChangedEvent struct {
		UserID string `json:"user_id"`
	}

	var event bulkInteractionChangedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		span.RecordError(err)
		slog.Error("❌ Invalid invalidation event format", "error", err)
		return
	}

	childCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := h.recommendations.Invalidate(childCtx, event.UserID); err != nil {
		span.RecordError(err)
		slog.Error("❌ Batch invalidation failed", "user_id", event.UserID, "error", err)
		return
	}
	slog.Info("🧹 Recommendation batches invalidated", "user_id", event.UserID)
}
