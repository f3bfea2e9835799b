package handler

import (
	"encoding/json"
	"maps"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"hostavail/internal/availability/domain"
	"hostavail/internal/availability/service"
	apperrors "hostavail/pkg/errors"
	httputil "hostavail/pkg/http"
	"hostavail/pkg/logger"
	"hostavail/pkg/model"
)

type CheckResponse struct {
	DecisionID     string                 `json:"decision_id"`
	AvailableUsers []domain.CandidateUser `json:"available_users"`
	Verdicts       []domain.Verdict       `json:"verdicts"`
}

type AvailabilityHandler struct {
	service service.CheckService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.CheckService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

func (h *AvailabilityHandler) Check(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AvailabilityCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Check", apperrors.InvalidInput("Invalid request body"))
		return
	}

	decision, err := h.service.Check(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Check", withDecision(err, decision))
		return
	}

	if err := httputil.WriteSuccess(w, CheckResponse{
		DecisionID:     decision.ID,
		AvailableUsers: decision.Available,
		Verdicts:       decision.Verdicts,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Check", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) ValidateLength(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ValidateLengthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "ValidateLength", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.ValidateLength(r.Context(), &req); err != nil {
		h.writeError(w, "ValidateLength", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

// withDecision attaches the per-user verdicts to a rejection so callers can
// see why each candidate was turned down.
func withDecision(err error, decision *domain.Decision) error {
	if decision == nil || !apperrors.IsAppError(err) {
		return err
	}
	appErr := *apperrors.AsAppError(err)
	details := maps.Clone(appErr.Details)
	if details == nil {
		details = make(map[string]any, 2)
	}
	details["decision_id"] = decision.ID
	details["verdicts"] = decision.Verdicts
	appErr.Details = details
	return &appErr
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/availability/check", h.Check)
	router.POST("/api/v1/availability/validate-length", h.ValidateLength)
}
