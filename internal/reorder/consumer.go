package reorder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/calderacafe/brewstock-backend/pkg/enums"
	"github.com/calderacafe/brewstock-backend/pkg/logger"
	"github.com/calderacafe/brewstock-backend/pkg/metrics"
	"github.com/calderacafe/brewstock-backend/pkg/outbox"
	"github.com/calderacafe/brewstock-backend/pkg/outbox/payloads"
)

const consumerName = "reorder-worker"

type evaluator interface {
	Evaluate(ctx context.Context, input EvaluateInput) (*EvaluateResult, error)
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer runs the low-stock trigger off stock level events while honoring
// Redis idempotency.
type Consumer struct {
	service evaluator
	manager idempotencyChecker
	logg    *logger.Logger
	metrics *metrics.ConsumerMetrics
}

// NewConsumer builds a new reorder consumer. Metrics may be nil.
func NewConsumer(service evaluator, manager idempotencyChecker, logg *logger.Logger, m *metrics.ConsumerMetrics) (*Consumer, error) {
	if service == nil {
		return nil, fmt.Errorf("reorder service required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{service: service, manager: manager, logg: logg, metrics: m}, nil
}

// Process evaluates the reorder trigger for a stock level change. Events of
// any other type are acked without work.
func (c *Consumer) Process(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id":   envelope.EventID,
		"event_type": eventType,
	})

	if eventType != enums.EventStockLevelChanged {
		c.logg.Info(logCtx, "event not handled by reorder consumer")
		return nil
	}

	if envelope.EventID == "" {
		return fmt.Errorf("event id missing")
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		return fmt.Errorf("parse event id: %w", err)
	}

	already, err := c.manager.CheckAndMarkProcessed(ctx, consumerName, eventID)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return nil
	}

	var payload payloads.StockLevelChangedEvent
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		c.logg.Error(logCtx, "failed to decode stock level payload", err)
		_ = c.manager.Delete(ctx, consumerName, eventID)
		return fmt.Errorf("decode payload: %w", err)
	}

	started := time.Now()
	result, err := c.service.Evaluate(ctx, EvaluateInput{
		BranchID:     payload.BranchID,
		IngredientID: payload.IngredientID,
		NewQty:       payload.NewQty,
	})
	if c.metrics != nil {
		c.metrics.ObserveDuration(string(eventType), time.Since(started))
	}
	if err != nil {
		c.logg.Error(logCtx, "reorder evaluation failed", err)
		if c.metrics != nil {
			c.metrics.IncFailure(string(eventType))
		}
		_ = c.manager.Delete(ctx, consumerName, eventID)
		return err
	}
	if c.metrics != nil {
		c.metrics.IncSuccess(string(eventType))
	}

	if result.Triggered {
		c.logg.Info(c.logg.WithFields(logCtx, map[string]any{
			"purchase_order_id": result.PurchaseOrderID,
			"suggested_qty":     result.SuggestedQty,
		}), "reorder suggestion recorded")
	} else {
		c.logg.Info(logCtx, "stock level acceptable")
	}
	return nil
}
