package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/motocrm/balance/internal/adapter/http/dto"
	"github.com/motocrm/balance/internal/usecase"
)

type coordinatorStub struct {
	handleBatchFn func(ctx context.Context, events []usecase.DocumentEvent) int
}

func (s *coordinatorStub) HandleBatch(ctx context.Context, events []usecase.DocumentEvent) int {
	return s.handleBatchFn(ctx, events)
}

func TestDocumentHandler_Events(t *testing.T) {
	var captured []usecase.DocumentEvent
	handler := NewDocumentHandler(&coordinatorStub{
		handleBatchFn: func(ctx context.Context, events []usecase.DocumentEvent) int {
			captured = events
			return 0
		},
	})

	body, _ := json.Marshal(dto.DocumentEventBatchRequest{
		Events: []dto.DocumentEventRequest{
			{
				DocumentID:    "FV-1",
				CompanyID:     7,
				Direction:     "INCOME",
				PaymentMethod: "CASH",
				OldStatus:     "NOT_PAID",
				NewStatus:     "PAID",
			},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/documents/events", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Events(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if len(captured) != 1 || captured[0].Document.ID != "FV-1" {
		t.Fatalf("unexpected events passed to coordinator: %+v", captured)
	}

	var resp dto.DocumentEventBatchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Processed != 1 || resp.Failed != 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestDocumentHandler_Events_PartialFailure(t *testing.T) {
	handler := NewDocumentHandler(&coordinatorStub{
		handleBatchFn: func(ctx context.Context, events []usecase.DocumentEvent) int {
			return 1
		},
	})

	body, _ := json.Marshal(dto.DocumentEventBatchRequest{
		Events: []dto.DocumentEventRequest{
			{DocumentID: "FV-1"},
			{DocumentID: "FV-2"},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/documents/events", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Events(rec, req)

	if rec.Code != http.StatusMultiStatus {
		t.Fatalf("expected 207, got %d", rec.Code)
	}
}

func TestDocumentHandler_Events_EmptyBatch(t *testing.T) {
	handler := NewDocumentHandler(&coordinatorStub{
		handleBatchFn: func(ctx context.Context, events []usecase.DocumentEvent) int {
			t.Fatal("coordinator should not be called for an empty batch")
			return 0
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/documents/events", bytes.NewBufferString(`{"events":[]}`))
	rec := httptest.NewRecorder()

	handler.Events(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
