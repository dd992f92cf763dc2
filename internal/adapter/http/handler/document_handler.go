package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/motocrm/balance/internal/adapter/http/dto"
	"github.com/motocrm/balance/internal/usecase"
)

// DocumentEventService defines the behavior needed by DocumentHandler.
type DocumentEventService interface {
	HandleBatch(ctx context.Context, events []usecase.DocumentEvent) int
}

// DocumentHandler ingests document lifecycle notifications from the
// financial-document module.
type DocumentHandler struct {
	coordinatorUC DocumentEventService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(coordinatorUC DocumentEventService) *DocumentHandler {
	return &DocumentHandler{coordinatorUC: coordinatorUC}
}

// Events processes a batch of document change and deletion notifications.
// Individual failures do not abort the batch; the response reports how many
// events could not be applied.
func (h *DocumentHandler) Events(w http.ResponseWriter, r *http.Request) {
	var req dto.DocumentEventBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if len(req.Events) == 0 {
		writeError(w, http.StatusBadRequest, "empty batch", "")
		return
	}

	failed := h.coordinatorUC.HandleBatch(r.Context(), req.ToUseCaseEvents())

	status := http.StatusOK
	if failed > 0 {
		status = http.StatusMultiStatus
	}

	writeJSON(w, status, dto.DocumentEventBatchResponse{
		Processed: len(req.Events) - failed,
		Failed:    failed,
	})
}
