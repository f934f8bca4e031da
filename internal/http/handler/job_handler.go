package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samedayramps/ramp-api/internal/domain"
	"github.com/samedayramps/ramp-api/internal/mapper"
	"github.com/samedayramps/ramp-api/internal/repository"
	"github.com/samedayramps/ramp-api/internal/service"
	"go.uber.org/zap"
)

type JobHandler struct {
	jobService *service.JobService
	logger     *zap.Logger
}

func NewJobHandler(jobService *service.JobService, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		jobService: jobService,
		logger:     logger,
	}
}

// List godoc
// @Summary List jobs
// @Description Get paginated list of installation jobs ordered by installation date
// @Tags Jobs
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(scheduled, completed, cancelled)
// @Param customerId query string false "Filter by customer" format(uuid)
// @Param from query string false "Installation date lower bound (RFC3339)"
// @Param to query string false "Installation date upper bound (RFC3339)"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.JobDTO}
// @Failure 500 {object} domain.APIError
// @Router /jobs [get]
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	filters := repository.JobFilters{}
	if status := r.URL.Query().Get("status"); status != "" {
		s := domain.JobStatus(status)
		filters.Status = &s
	}
	if cid := r.URL.Query().Get("customerId"); cid != "" {
		id, err := uuid.Parse(cid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid customer ID format")
			return
		}
		filters.CustomerID = &id
	}
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid 'from' date, expected RFC3339")
			return
		}
		filters.From = &t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid 'to' date, expected RFC3339")
			return
		}
		filters.To = &t
	}

	jobs, total, err := h.jobService.List(r.Context(), filters, page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list jobs")
		return
	}

	respondJSON(w, http.StatusOK, paginated(mapper.ToJobDTOs(jobs), total, page, pageSize))
}

// GetByID godoc
// @Summary Get job by ID
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID" format(uuid)
// @Success 200 {object} domain.JobDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /jobs/{id} [get]
func (h *JobHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	job, err := h.jobService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get job")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToJobDTO(job))
}

// Schedule godoc
// @Summary Reschedule job
// @Description Move the installation to a new date. The calendar event follows when calendar sync is configured.
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID" format(uuid)
// @Param request body domain.ScheduleJobRequest true "New installation date"
// @Success 200 {object} domain.JobDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Job is not scheduled"
// @Router /jobs/{id}/schedule [put]
func (h *JobHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	var req domain.ScheduleJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.Reschedule(r.Context(), id, req.ScheduledInstallationDate)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to reschedule job")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToJobDTO(job))
}

// Complete godoc
// @Summary Complete job
// @Description Mark the installation done. The parent quote moves to completed.
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID" format(uuid)
// @Success 200 {object} domain.JobDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Job already completed or cancelled"
// @Router /jobs/{id}/complete [post]
func (h *JobHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	job, err := h.jobService.Complete(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to complete job")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToJobDTO(job))
}

// Cancel godoc
// @Summary Cancel job
// @Description Cancel a scheduled installation and remove its calendar event
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID" format(uuid)
// @Param request body object false "Optional cancellation reason"
// @Success 200 {object} domain.JobDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /jobs/{id}/cancel [post]
func (h *JobHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// Body is optional
	_ = json.NewDecoder(r.Body).Decode(&req)

	job, err := h.jobService.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to cancel job")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToJobDTO(job))
}
