package webhooks

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/calderacafe/brewstock-backend/internal/reorder"
	pkgerrors "github.com/calderacafe/brewstock-backend/pkg/errors"
	"github.com/calderacafe/brewstock-backend/pkg/logger"
)

const (
	tableStockCheckItems = "stock_check_items"
	tableBranchInventory = "branch_inventory"
)

type evaluator interface {
	Evaluate(ctx context.Context, input reorder.EvaluateInput) (*reorder.EvaluateResult, error)
}

type checkResolver interface {
	BranchIDForCheck(ctx context.Context, checkID uuid.UUID) (uuid.UUID, error)
}

// StockLevelEvent is the row-change payload the database dispatcher posts on
// inserts and updates to the watched tables.
type StockLevelEvent struct {
	Type   string          `json:"type"`
	Table  string          `json:"table"`
	Schema string          `json:"schema"`
	Record json.RawMessage `json:"record"`
}

type stockCheckItemRecord struct {
	StockCheckID uuid.UUID `json:"stock_check_id"`
	IngredientID uuid.UUID `json:"ingredient_id"`
	OnHandQty    int       `json:"on_hand_qty"`
}

type branchInventoryRecord struct {
	BranchID     uuid.UUID `json:"branch_id"`
	IngredientID uuid.UUID `json:"ingredient_id"`
	OnHandQty    int       `json:"on_hand_qty"`
}

// StockLevel normalizes row-change payloads from either watched table into a
// low-stock evaluation. The response shape follows the dispatcher contract
// rather than the API envelope: the dispatcher retries on 500 and treats any
// 200 as settled.
func StockLevel(svc evaluator, checks checkResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || checks == nil {
			writeDispatcherError(w, http.StatusInternalServerError, "trigger unavailable")
			return
		}

		var event StockLevelEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			writeDispatcherError(w, http.StatusBadRequest, "invalid payload")
			return
		}

		eventType := strings.ToUpper(strings.TrimSpace(event.Type))
		if eventType != "INSERT" && eventType != "UPDATE" {
			writeDispatcherJSON(w, http.StatusOK, map[string]any{"message": "ignored event type"})
			return
		}

		input, err := normalize(ctx, checks, event)
		if err != nil {
			handleTriggerError(ctx, logg, w, err)
			return
		}
		if input == nil {
			writeDispatcherJSON(w, http.StatusOK, map[string]any{"message": "ignored table"})
			return
		}

		result, err := svc.Evaluate(ctx, *input)
		if err != nil {
			handleTriggerError(ctx, logg, w, err)
			return
		}

		if !result.Triggered {
			writeDispatcherJSON(w, http.StatusOK, map[string]any{"message": "stock level acceptable"})
			return
		}

		writeDispatcherJSON(w, http.StatusOK, map[string]any{
			"message":      "reorder line ensured",
			"poId":         result.PurchaseOrderID,
			"ingredientId": result.IngredientID,
			"suggestedQty": result.SuggestedQty,
		})
	}
}

func normalize(ctx context.Context, checks checkResolver, event StockLevelEvent) (*reorder.EvaluateInput, error) {
	switch strings.TrimSpace(event.Table) {
	case tableBranchInventory:
		var record branchInventoryRecord
		if err := json.Unmarshal(event.Record, &record); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode branch inventory record")
		}
		return &reorder.EvaluateInput{
			BranchID:     record.BranchID,
			IngredientID: record.IngredientID,
			NewQty:       record.OnHandQty,
		}, nil
	case tableStockCheckItems:
		var record stockCheckItemRecord
		if err := json.Unmarshal(event.Record, &record); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode stock check item record")
		}
		branchID, err := checks.BranchIDForCheck(ctx, record.StockCheckID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve branch for stock check")
		}
		return &reorder.EvaluateInput{
			BranchID:     branchID,
			IngredientID: record.IngredientID,
			NewQty:       record.OnHandQty,
		}, nil
	default:
		return nil, nil
	}
}

func handleTriggerError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if logg != nil {
		logg.Error(ctx, "stock level trigger failed", err)
	}
	status := http.StatusInternalServerError
	if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeValidation {
		status = http.StatusBadRequest
	}
	writeDispatcherError(w, status, err.Error())
}

func writeDispatcherError(w http.ResponseWriter, status int, message string) {
	writeDispatcherJSON(w, status, map[string]any{"error": message})
}

func writeDispatcherJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
