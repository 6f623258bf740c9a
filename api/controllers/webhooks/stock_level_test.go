package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/calderacafe/brewstock-backend/internal/reorder"
	"github.com/calderacafe/brewstock-backend/pkg/logger"
)

type fakeEvaluator struct {
	result *reorder.EvaluateResult
	err    error
	inputs []reorder.EvaluateInput
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, input reorder.EvaluateInput) (*reorder.EvaluateResult, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &reorder.EvaluateResult{Triggered: false}, nil
}

type fakeCheckResolver struct {
	branchID uuid.UUID
	err      error
}

func (f *fakeCheckResolver) BranchIDForCheck(ctx context.Context, checkID uuid.UUID) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	return f.branchID, nil
}

func webhookLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func postEvent(t *testing.T, handler http.HandlerFunc, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stock-level", strings.NewReader(payload))
	resp := httptest.NewRecorder()
	handler(resp, req)
	return resp
}

func TestStockLevelBranchInventoryTriggered(t *testing.T) {
	branchID := uuid.New()
	ingredientID := uuid.New()
	orderID := uuid.New()
	svc := &fakeEvaluator{result: &reorder.EvaluateResult{
		Triggered:       true,
		PurchaseOrderID: orderID,
		IngredientID:    ingredientID,
		SuggestedQty:    8,
	}}

	payload := `{"type":"UPDATE","table":"branch_inventory","schema":"public","record":{"branch_id":"` + branchID.String() + `","ingredient_id":"` + ingredientID.String() + `","on_hand_qty":7}}`
	resp := postEvent(t, StockLevel(svc, &fakeCheckResolver{}, webhookLogger()), payload)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.inputs) != 1 {
		t.Fatalf("expected one evaluation got %d", len(svc.inputs))
	}
	if svc.inputs[0].BranchID != branchID || svc.inputs[0].NewQty != 7 {
		t.Fatalf("unexpected input %+v", svc.inputs[0])
	}

	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body["poId"] != orderID.String() {
		t.Fatalf("expected poId %s got %v", orderID, body["poId"])
	}
	if body["suggestedQty"] != float64(8) {
		t.Fatalf("expected suggestedQty 8 got %v", body["suggestedQty"])
	}
}

func TestStockLevelAcceptableIsNoOp(t *testing.T) {
	svc := &fakeEvaluator{}
	payload := `{"type":"INSERT","table":"branch_inventory","schema":"public","record":{"branch_id":"` + uuid.NewString() + `","ingredient_id":"` + uuid.NewString() + `","on_hand_qty":50}}`
	resp := postEvent(t, StockLevel(svc, &fakeCheckResolver{}, webhookLogger()), payload)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if _, hasPO := body["poId"]; hasPO {
		t.Fatal("no-op response must not carry poId")
	}
	if body["message"] == "" {
		t.Fatal("expected message in response")
	}
}

func TestStockLevelResolvesBranchForCheckItems(t *testing.T) {
	branchID := uuid.New()
	svc := &fakeEvaluator{}
	resolver := &fakeCheckResolver{branchID: branchID}

	payload := `{"type":"INSERT","table":"stock_check_items","schema":"public","record":{"stock_check_id":"` + uuid.NewString() + `","ingredient_id":"` + uuid.NewString() + `","on_hand_qty":2}}`
	resp := postEvent(t, StockLevel(svc, resolver, webhookLogger()), payload)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(svc.inputs) != 1 || svc.inputs[0].BranchID != branchID {
		t.Fatalf("expected branch resolved from check, got %+v", svc.inputs)
	}
}

func TestStockLevelIgnoresOtherTables(t *testing.T) {
	svc := &fakeEvaluator{}
	payload := `{"type":"INSERT","table":"requests","schema":"public","record":{}}`
	resp := postEvent(t, StockLevel(svc, &fakeCheckResolver{}, webhookLogger()), payload)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(svc.inputs) != 0 {
		t.Fatal("unexpected evaluation for ignored table")
	}
}

func TestStockLevelIgnoresDeleteEvents(t *testing.T) {
	svc := &fakeEvaluator{}
	payload := `{"type":"DELETE","table":"branch_inventory","schema":"public","record":{}}`
	resp := postEvent(t, StockLevel(svc, &fakeCheckResolver{}, webhookLogger()), payload)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(svc.inputs) != 0 {
		t.Fatal("unexpected evaluation for delete event")
	}
}

func TestStockLevelEvaluationFailureReturns500(t *testing.T) {
	svc := &fakeEvaluator{err: errors.New("database down")}
	payload := `{"type":"UPDATE","table":"branch_inventory","schema":"public","record":{"branch_id":"` + uuid.NewString() + `","ingredient_id":"` + uuid.NewString() + `","on_hand_qty":1}}`
	resp := postEvent(t, StockLevel(svc, &fakeCheckResolver{}, webhookLogger()), payload)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body["error"] == nil {
		t.Fatal("expected error field in response")
	}
}
