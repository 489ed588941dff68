package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leadbase/leadbase/internal/metrics"
	"github.com/leadbase/leadbase/internal/models"
)

// SubscriptionRequest is the request body for PUT /api/v1/leads/{id}/subscription
type SubscriptionRequest struct {
	Status string `json:"status"`
}

// BulkRequest is the request body for POST /api/v1/leads/bulk
type BulkRequest struct {
	Action  string   `json:"action"`
	LeadIDs []string `json:"lead_ids"`
}

// BulkResponse reports how many leads a bulk action touched
type BulkResponse struct {
	Action   string `json:"action"`
	Affected int    `json:"affected"`
}

// handleLeadDelete handles DELETE /api/v1/leads/{id}
func (s *Server) handleLeadDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.leads.Delete(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.sendError(w, http.StatusNotFound, "Lead not found")
			return
		}
		s.logger.Error("failed to delete lead", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to delete lead")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleLeadToggle handles POST /api/v1/leads/{id}/toggle
func (s *Server) handleLeadToggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	lead, err := s.leads.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get lead", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get lead")
		return
	}
	if lead == nil {
		s.sendError(w, http.StatusNotFound, "Lead not found")
		return
	}

	if err := s.leads.SetActive(id, !lead.Active); err != nil {
		s.logger.Error("failed to toggle lead", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to toggle lead")
		return
	}

	s.sendJSON(w, http.StatusOK, map[string]bool{"active": !lead.Active})
}

// handleLeadSubscription handles PUT /api/v1/leads/{id}/subscription
func (s *Server) handleLeadSubscription(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req SubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status != models.StatusSubscribed && req.Status != models.StatusUnsubscribed && req.Status != "" {
		s.sendError(w, http.StatusBadRequest, "status must be subscribed, unsubscribed or empty")
		return
	}

	if err := s.leads.SetManualStatus(id, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.sendError(w, http.StatusNotFound, "Lead not found")
			return
		}
		s.logger.Error("failed to set subscription", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to set subscription")
		return
	}

	s.sendJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// handleLeadBulk handles POST /api/v1/leads/bulk
func (s *Server) handleLeadBulk(w http.ResponseWriter, r *http.Request) {
	var req BulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.LeadIDs) == 0 {
		s.sendError(w, http.StatusBadRequest, "lead_ids are required")
		return
	}

	affected, err := s.leads.BulkApply(req.Action, req.LeadIDs)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Info("bulk lead action", "action", req.Action, "affected", affected)
	s.sendJSON(w, http.StatusOK, BulkResponse{Action: req.Action, Affected: affected})
}

// UnsubscribeInfoResponse is the response for GET /unsubscribe/{token}
type UnsubscribeInfoResponse struct {
	Email        string `json:"email"`
	Unsubscribed bool   `json:"unsubscribed"`
}

// handleUnsubscribeInfo handles GET /unsubscribe/{token}: the data a
// confirmation page needs before the visitor commits.
func (s *Server) handleUnsubscribeInfo(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	lead, err := s.leads.GetByToken(token)
	if err != nil {
		s.logger.Error("failed to look up token", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to look up token")
		return
	}
	if lead == nil {
		s.sendError(w, http.StatusNotFound, "Unknown unsubscribe link")
		return
	}

	s.sendJSON(w, http.StatusOK, UnsubscribeInfoResponse{
		Email:        lead.Email,
		Unsubscribed: lead.UnsubscribeStatus == models.StatusUnsubscribed,
	})
}

// handleUnsubscribeConfirm handles POST /unsubscribe/{token}. Repeat
// confirmations land on the same end state.
func (s *Server) handleUnsubscribeConfirm(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	lead, err := s.leads.ConfirmUnsubscribe(token)
	if err != nil {
		s.logger.Error("failed to confirm unsubscribe", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to confirm unsubscribe")
		return
	}
	if lead == nil {
		s.sendError(w, http.StatusNotFound, "Unknown unsubscribe link")
		return
	}

	metrics.IncUnsubscribes()
	s.logger.Info("unsubscribe confirmed", "lead_id", lead.ID)

	s.sendJSON(w, http.StatusOK, UnsubscribeInfoResponse{
		Email:        lead.Email,
		Unsubscribed: true,
	})
}
