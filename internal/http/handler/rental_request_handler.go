package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samedayramps/ramp-api/internal/domain"
	"github.com/samedayramps/ramp-api/internal/mapper"
	"github.com/samedayramps/ramp-api/internal/repository"
	"github.com/samedayramps/ramp-api/internal/service"
	"go.uber.org/zap"
)

type RentalRequestHandler struct {
	requestService *service.RentalRequestService
	logger         *zap.Logger
}

func NewRentalRequestHandler(requestService *service.RentalRequestService, logger *zap.Logger) *RentalRequestHandler {
	return &RentalRequestHandler{
		requestService: requestService,
		logger:         logger,
	}
}

// Create godoc
// @Summary Submit a rental request
// @Description Public intake endpoint for the website contact form
// @Tags RentalRequests
// @Accept json
// @Produce json
// @Param request body domain.CreateRentalRequestRequest true "Rental request data"
// @Success 201 {object} domain.RentalRequestDTO
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /rental-requests [post]
func (h *RentalRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRentalRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	request, err := h.requestService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create rental request")
		return
	}

	w.Header().Set("Location", "/api/v1/rental-requests/"+request.ID.String())
	respondJSON(w, http.StatusCreated, mapper.ToRentalRequestDTO(request))
}

// List godoc
// @Summary List rental requests
// @Description Get paginated list of rental requests with optional filters
// @Tags RentalRequests
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Param status query string false "Filter by status" Enums(new, contacted, converted, archived)
// @Param search query string false "Search by name, email, or phone"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.RentalRequestDTO}
// @Failure 500 {object} domain.APIError
// @Router /rental-requests [get]
func (h *RentalRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	filters := repository.RentalRequestFilters{}
	if status := r.URL.Query().Get("status"); status != "" {
		s := domain.RentalRequestStatus(status)
		filters.Status = &s
	}
	if search := r.URL.Query().Get("search"); search != "" {
		filters.Search = &search
	}

	requests, total, err := h.requestService.List(r.Context(), filters, page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list rental requests")
		return
	}

	respondJSON(w, http.StatusOK, paginated(mapper.ToRentalRequestDTOs(requests), total, page, pageSize))
}

// GetByID godoc
// @Summary Get rental request by ID
// @Tags RentalRequests
// @Accept json
// @Produce json
// @Param id path string true "Rental request ID" format(uuid)
// @Success 200 {object} domain.RentalRequestDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /rental-requests/{id} [get]
func (h *RentalRequestHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid rental request ID format")
		return
	}

	request, err := h.requestService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get rental request")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToRentalRequestDTO(request))
}

// UpdateStatus godoc
// @Summary Update rental request status
// @Description Move a request between intake statuses. Conversion happens through the convert endpoint.
// @Tags RentalRequests
// @Accept json
// @Produce json
// @Param id path string true "Rental request ID" format(uuid)
// @Param request body domain.UpdateRentalRequestStatusRequest true "New status"
// @Success 200 {object} domain.RentalRequestDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /rental-requests/{id}/status [put]
func (h *RentalRequestHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid rental request ID format")
		return
	}

	var req domain.UpdateRentalRequestStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	request, err := h.requestService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update rental request status")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToRentalRequestDTO(request))
}

// Convert godoc
// @Summary Convert rental request to customer
// @Description Create a customer from the request's contact details. A request converts at most once.
// @Tags RentalRequests
// @Accept json
// @Produce json
// @Param id path string true "Rental request ID" format(uuid)
// @Success 201 {object} domain.CustomerDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Request already converted"
// @Router /rental-requests/{id}/convert [post]
func (h *RentalRequestHandler) Convert(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid rental request ID format")
		return
	}

	customer, err := h.requestService.ConvertToCustomer(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to convert rental request")
		return
	}

	w.Header().Set("Location", "/api/v1/customers/"+customer.ID.String())
	respondJSON(w, http.StatusCreated, mapper.ToCustomerDTO(customer))
}

// parsePagination reads page/pageSize query params with sane bounds
func parsePagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	return page, pageSize
}

// paginated wraps a result page in the standard envelope
func paginated(data interface{}, total int64, page, pageSize int) domain.PaginatedResponse {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return domain.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
