package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samedayramps/ramp-api/internal/domain"
	"github.com/samedayramps/ramp-api/internal/mapper"
	"github.com/samedayramps/ramp-api/internal/service"
	"go.uber.org/zap"
)

type ActivityHandler struct {
	activityService *service.ActivityService
	logger          *zap.Logger
}

func NewActivityHandler(activityService *service.ActivityService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		logger:          logger,
	}
}

// Create godoc
// @Summary Create activity
// @Description Record a manual activity note against a rental request, customer, quote, or job
// @Tags Activities
// @Accept json
// @Produce json
// @Param request body domain.CreateActivityRequest true "Activity data"
// @Success 201 {object} domain.ActivityDTO
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /activities [post]
func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	activity, err := h.activityService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create activity")
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToActivityDTO(activity))
}

// ListRecent godoc
// @Summary List recent activities
// @Description Get the most recent activities across all targets
// @Tags Activities
// @Accept json
// @Produce json
// @Param limit query int false "Max results (default 50, max 100)"
// @Success 200 {array} domain.ActivityDTO
// @Failure 500 {object} domain.APIError
// @Router /activities [get]
func (h *ActivityHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	activities, err := h.activityService.ListRecent(r.Context(), limit)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list activities")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToActivityDTOs(activities))
}

// ListByTarget godoc
// @Summary List activities for a target
// @Description Get activities recorded against a specific record
// @Tags Activities
// @Accept json
// @Produce json
// @Param targetType path string true "Target type" Enums(RentalRequest, Customer, Quote, Job)
// @Param targetId path string true "Target ID" format(uuid)
// @Param limit query int false "Max results (default 50, max 100)"
// @Success 200 {array} domain.ActivityDTO
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /activities/{targetType}/{targetId} [get]
func (h *ActivityHandler) ListByTarget(w http.ResponseWriter, r *http.Request) {
	targetType := domain.ActivityTargetType(chi.URLParam(r, "targetType"))

	targetID, err := uuid.Parse(chi.URLParam(r, "targetId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid target ID format")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	activities, err := h.activityService.GetByTarget(r.Context(), targetType, targetID, limit)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list activities")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToActivityDTOs(activities))
}
