package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"skillswap/backend/internal/escalation"
	"skillswap/backend/pkg/helpers"
)

// DetectionHandler ingests suspicious-activity reports from the in-call
// detector and feeds them into the escalation engine.
type DetectionHandler struct {
	engine    *escalation.Engine
	validator *helpers.CustomValidator
}

func NewDetectionHandler(engine *escalation.Engine, validator *helpers.CustomValidator) *DetectionHandler {
	return &DetectionHandler{engine: engine, validator: validator}
}

func (h *DetectionHandler) Routes(r chi.Router) {
	r.Post("/", h.Report)
}

type detectionRequest struct {
	SessionID  uint64    `json:"session_id" validate:"required"`
	UserID     uint64    `json:"user_id" validate:"required"`
	Confidence float64   `json:"confidence" validate:"gte=0,lte=1"`
	Severity   string    `json:"severity" validate:"required,severity"`
	Timestamp  time.Time `json:"timestamp"`
}

func (h *DetectionHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req detectionRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondBadRequest(w, "invalid detection event")
		return
	}

	outcome, err := h.engine.ProcessEvent(r.Context(), &escalation.DetectionEvent{
		SessionID:  req.SessionID,
		UserID:     req.UserID,
		Confidence: req.Confidence,
		Severity:   req.Severity,
		Timestamp:  req.Timestamp,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"action":             outcome.Action,
		"warning_count":      outcome.WarningCount,
		"evidence_reference": outcome.EvidenceReference,
	})
}
