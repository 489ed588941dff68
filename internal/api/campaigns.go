package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/leadbase/leadbase/internal/dispatch"
	"github.com/leadbase/leadbase/internal/leadcsv"
	"github.com/leadbase/leadbase/internal/metrics"
	"github.com/leadbase/leadbase/internal/models"
	"github.com/leadbase/leadbase/internal/pipeline"
)

// UploadRequest is the request body for POST /api/v1/campaigns/upload
type UploadRequest struct {
	CampaignName string           `json:"campaign_name"`
	Leads        []models.RawLead `json:"leads"`
}

// MergeRequest is the request body for POST /api/v1/campaigns/merge
type MergeRequest struct {
	Name        string   `json:"name"`
	CampaignIDs []string `json:"campaign_ids"`
}

// DispatchRequest is the request body for POST /api/v1/campaigns/{id}/dispatch
type DispatchRequest struct {
	Mode    string   `json:"mode"`
	LeadIDs []string `json:"lead_ids"`
}

// CampaignListResponse is the response for GET /api/v1/campaigns
type CampaignListResponse struct {
	Campaigns []models.CampaignWithStats `json:"campaigns"`
	Total     int                        `json:"total"`
}

// CampaignDetailResponse is the response for GET /api/v1/campaigns/{id}
type CampaignDetailResponse struct {
	Campaign *models.Campaign `json:"campaign"`
	Leads    []models.Lead    `json:"leads"`
	Total    int              `json:"total"`
}

// handleCampaignList handles GET /api/v1/campaigns
func (s *Server) handleCampaignList(w http.ResponseWriter, r *http.Request) {
	filter := models.CampaignListFilter{
		Search: r.URL.Query().Get("search"),
		Status: r.URL.Query().Get("status"),
	}
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	filter.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	campaigns, total, err := s.campaigns.List(filter)
	if err != nil {
		s.logger.Error("failed to list campaigns", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to list campaigns")
		return
	}

	s.sendJSON(w, http.StatusOK, CampaignListResponse{Campaigns: campaigns, Total: total})
}

// handleCampaignUpload handles POST /api/v1/campaigns/upload
func (s *Server) handleCampaignUpload(w http.ResponseWriter, r *http.Request) {
	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.CampaignName == "" {
		s.sendError(w, http.StatusBadRequest, "campaign_name is required")
		return
	}
	if len(req.Leads) == 0 {
		s.sendError(w, http.StatusBadRequest, pipeline.ErrNoLeads.Error())
		return
	}

	meta := pipeline.CampaignMeta{Name: req.CampaignName, Source: "upload"}
	result, err := s.pipeline.Ingest(r.Context(), meta, req.Leads, pipeline.FirstSeen)
	if err != nil {
		s.logger.Error("upload ingestion failed", "campaign", req.CampaignName, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to ingest leads")
		return
	}

	metrics.IncCampaignsCreated()
	metrics.ObserveIngest("upload", result.Added, result.DuplicatesRemoved, result.Suppressed)

	s.sendJSON(w, http.StatusCreated, result)
}

// handleCampaignImport handles POST /api/v1/campaigns/import (multipart CSV)
func (s *Server) handleCampaignImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	name := r.FormValue("campaign_name")
	if name == "" {
		s.sendError(w, http.StatusBadRequest, "campaign_name is required")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	raws, err := leadcsv.Read(file)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, fmt.Sprintf("Invalid CSV: %v", err))
		return
	}
	if len(raws) == 0 {
		s.sendError(w, http.StatusBadRequest, pipeline.ErrNoLeads.Error())
		return
	}

	meta := pipeline.CampaignMeta{Name: name, Source: "csv"}
	result, err := s.pipeline.Ingest(r.Context(), meta, raws, pipeline.FirstSeen)
	if err != nil {
		s.logger.Error("csv ingestion failed", "campaign", name, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to ingest leads")
		return
	}

	metrics.IncCampaignsCreated()
	metrics.ObserveIngest("csv", result.Added, result.DuplicatesRemoved, result.Suppressed)

	s.sendJSON(w, http.StatusCreated, result)
}

// handleCampaignMerge handles POST /api/v1/campaigns/merge
func (s *Server) handleCampaignMerge(w http.ResponseWriter, r *http.Request) {
	var req MergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		s.sendError(w, http.StatusBadRequest, "name is required")
		return
	}

	result, err := s.pipeline.Merge(r.Context(), req.Name, req.CampaignIDs)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrTooFewCampaigns):
			s.sendError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, pipeline.ErrCampaignNotFound):
			s.sendError(w, http.StatusNotFound, err.Error())
		default:
			s.logger.Error("merge failed", "name", req.Name, "error", err)
			s.sendError(w, http.StatusInternalServerError, "Failed to merge campaigns")
		}
		return
	}

	metrics.IncCampaignsMerged()
	metrics.ObserveIngest("merge", result.Added, result.DuplicatesRemoved, result.Suppressed)

	s.sendJSON(w, http.StatusCreated, result)
}

// handleCampaignGet handles GET /api/v1/campaigns/{id}
func (s *Server) handleCampaignGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	campaign, err := s.campaigns.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get campaign", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get campaign")
		return
	}
	if campaign == nil {
		s.sendError(w, http.StatusNotFound, "Campaign not found")
		return
	}

	filter := models.LeadFilter{
		CampaignID: id,
		Search:     r.URL.Query().Get("search"),
	}
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	filter.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	leads, total, err := s.leads.ListByCampaign(filter)
	if err != nil {
		s.logger.Error("failed to list leads", "campaign_id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to list leads")
		return
	}

	s.sendJSON(w, http.StatusOK, CampaignDetailResponse{
		Campaign: campaign,
		Leads:    leads,
		Total:    total,
	})
}

// handleCampaignApprove handles POST /api/v1/campaigns/{id}/approve
func (s *Server) handleCampaignApprove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.campaigns.Approve(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.sendError(w, http.StatusNotFound, "Campaign not found")
			return
		}
		s.logger.Error("failed to approve campaign", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to approve campaign")
		return
	}

	s.sendJSON(w, http.StatusOK, map[string]string{"status": models.CampaignApproved})
}

// handleCampaignDelete handles DELETE /api/v1/campaigns/{id}
func (s *Server) handleCampaignDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	campaign, err := s.campaigns.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get campaign", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get campaign")
		return
	}
	if campaign == nil {
		s.sendError(w, http.StatusNotFound, "Campaign not found")
		return
	}

	if err := s.campaigns.Delete(id); err != nil {
		s.logger.Error("failed to delete campaign", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to delete campaign")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleCampaignExport handles GET /api/v1/campaigns/{id}/export
func (s *Server) handleCampaignExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	campaign, err := s.campaigns.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get campaign", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get campaign")
		return
	}
	if campaign == nil {
		s.sendError(w, http.StatusNotFound, "Campaign not found")
		return
	}

	leads, _, err := s.leads.ListByCampaign(models.LeadFilter{CampaignID: id})
	if err != nil {
		s.logger.Error("failed to list leads", "campaign_id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to list leads")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", campaign.Name+".csv"))
	if err := leadcsv.Write(w, leads); err != nil {
		s.logger.Error("csv export failed", "campaign_id", id, "error", err)
	}
}

// handleCampaignDispatch handles POST /api/v1/campaigns/{id}/dispatch
func (s *Server) handleCampaignDispatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.dispatcher.Dispatch(r.Context(), id, req.Mode, req.LeadIDs)
	if err != nil {
		switch {
		case errors.Is(err, dispatch.ErrCampaignNotFound):
			s.sendError(w, http.StatusNotFound, "Campaign not found")
		case errors.Is(err, dispatch.ErrNotApproved):
			s.sendError(w, http.StatusConflict, "Campaign is not approved")
		case errors.Is(err, dispatch.ErrDeliveryFailed):
			metrics.ObserveDispatch("failed", 0)
			s.sendError(w, http.StatusBadGateway, "Webhook delivery failed")
		default:
			s.sendError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	metrics.ObserveDispatch("success", result.SentLeads)
	s.sendJSON(w, http.StatusOK, result)
}

// handleLeadAdd handles POST /api/v1/campaigns/{id}/leads: a single lead
// goes through the same ingestion funnel as a batch upload.
func (s *Server) handleLeadAdd(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	campaign, err := s.campaigns.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get campaign", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get campaign")
		return
	}
	if campaign == nil {
		s.sendError(w, http.StatusNotFound, "Campaign not found")
		return
	}

	var raw models.RawLead
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	meta := pipeline.CampaignMeta{ID: id, Source: "manual"}
	result, err := s.pipeline.Ingest(r.Context(), meta, []models.RawLead{raw}, pipeline.FirstSeen)
	if err != nil {
		s.logger.Error("lead ingestion failed", "campaign_id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to add lead")
		return
	}
	if result.Added == 0 {
		if result.Suppressed > 0 {
			s.sendError(w, http.StatusConflict, "Lead is unsubscribed")
			return
		}
		s.sendError(w, http.StatusBadRequest, "Lead requires an email and a first name")
		return
	}

	metrics.ObserveIngest("manual", result.Added, result.DuplicatesRemoved, result.Suppressed)
	s.sendJSON(w, http.StatusCreated, result)
}
