package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samedayramps/ramp-api/internal/domain"
	"github.com/samedayramps/ramp-api/internal/mapper"
	"github.com/samedayramps/ramp-api/internal/repository"
	"github.com/samedayramps/ramp-api/internal/service"
	"go.uber.org/zap"
)

type QuoteHandler struct {
	quoteService *service.QuoteService
	lifecycle    *service.QuoteLifecycleService
	jobService   *service.JobService
	logger       *zap.Logger
}

func NewQuoteHandler(
	quoteService *service.QuoteService,
	lifecycle *service.QuoteLifecycleService,
	jobService *service.JobService,
	logger *zap.Logger,
) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
		lifecycle:    lifecycle,
		jobService:   jobService,
		logger:       logger,
	}
}

// List godoc
// @Summary List quotes
// @Description Get paginated list of quotes with optional filters
// @Tags Quotes
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(draft, sent, accepted, job_created, completed, cancelled)
// @Param paymentStatus query string false "Filter by payment status" Enums(pending, paid, failed)
// @Param agreementStatus query string false "Filter by agreement status" Enums(pending, sent, viewed, signed, declined)
// @Param customerId query string false "Filter by customer" format(uuid)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.QuoteDTO}
// @Failure 500 {object} domain.APIError
// @Router /quotes [get]
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	filters := repository.QuoteFilters{}
	if status := r.URL.Query().Get("status"); status != "" {
		s := domain.QuoteStatus(status)
		filters.Status = &s
	}
	if ps := r.URL.Query().Get("paymentStatus"); ps != "" {
		s := domain.PaymentStatus(ps)
		filters.PaymentStatus = &s
	}
	if as := r.URL.Query().Get("agreementStatus"); as != "" {
		s := domain.AgreementStatus(as)
		filters.AgreementStatus = &s
	}
	if cid := r.URL.Query().Get("customerId"); cid != "" {
		id, err := uuid.Parse(cid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid customer ID format")
			return
		}
		filters.CustomerID = &id
	}

	quotes, total, err := h.quoteService.List(r.Context(), filters, page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list quotes")
		return
	}

	respondJSON(w, http.StatusOK, paginated(mapper.ToQuoteDTOs(quotes), total, page, pageSize))
}

// Create godoc
// @Summary Create quote
// @Description Create a draft quote for a customer. Pricing is computed from the current pricing variables and frozen on the quote.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body domain.CreateQuoteRequest true "Quote data"
// @Success 201 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError "Customer not found"
// @Failure 502 {object} domain.APIError "Distance lookup failed"
// @Router /quotes [post]
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create quote")
		return
	}

	w.Header().Set("Location", "/api/v1/quotes/"+quote.ID.String())
	respondJSON(w, http.StatusCreated, mapper.ToQuoteDTO(quote))
}

// GetByID godoc
// @Summary Get quote by ID
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /quotes/{id} [get]
func (h *QuoteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	quote, err := h.quoteService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get quote")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteDTO(quote))
}

// Update godoc
// @Summary Update quote
// @Description Replace a draft quote's configuration and recompute pricing. Quotes past draft are immutable.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param request body domain.UpdateQuoteRequest true "Quote data"
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Quote is not in draft"
// @Router /quotes/{id} [put]
func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	var req domain.UpdateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update quote")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteDTO(quote))
}

// Delete godoc
// @Summary Delete quote
// @Description Delete a draft quote. Quotes past draft can only be cancelled.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /quotes/{id} [delete]
func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	if err := h.quoteService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete quote")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Send godoc
// @Summary Send quote to customer
// @Description Email the quote with an acceptance link. The quote moves from draft to sent only after the email is delivered to the mail server.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Quote is not in draft"
// @Failure 502 {object} domain.APIError "Email delivery failed"
// @Router /quotes/{id}/send [post]
func (h *QuoteHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	quote, err := h.lifecycle.SendQuote(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to send quote")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteDTO(quote))
}

// Accept godoc
// @Summary Accept quote
// @Description Customer-facing acceptance. Requires the token minted when the quote was sent. Returns payment and signature links.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param request body domain.AcceptQuoteRequest true "Acceptance token"
// @Success 200 {object} domain.AcceptQuoteResponse
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError "Invalid or expired token"
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Quote already accepted"
// @Failure 502 {object} domain.APIError "Payment link creation failed"
// @Router /quotes/{id}/accept [post]
func (h *QuoteHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	var req domain.AcceptQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.lifecycle.AcceptQuote(r.Context(), id, req.Token)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to accept quote")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Cancel godoc
// @Summary Cancel quote
// @Description Cancel a quote from any non-terminal status
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param request body object false "Optional cancellation reason"
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Quote is in a terminal status"
// @Router /quotes/{id}/cancel [post]
func (h *QuoteHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// Body is optional
	_ = json.NewDecoder(r.Body).Decode(&req)

	quote, err := h.lifecycle.CancelQuote(r.Context(), id, req.Reason)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to cancel quote")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteDTO(quote))
}

// CreateJob godoc
// @Summary Create installation job from quote
// @Description Create the installation job for an accepted, paid quote. The installation date defaults to one week out when omitted.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param request body domain.CreateJobRequest false "Job data"
// @Success 201 {object} domain.JobDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Quote not accepted, unpaid, or already has a job"
// @Router /quotes/{id}/job [post]
func (h *QuoteHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	var req domain.CreateJobRequest
	// Body is optional
	_ = json.NewDecoder(r.Body).Decode(&req)

	job, err := h.jobService.CreateJobFromQuote(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create job")
		return
	}

	w.Header().Set("Location", "/api/v1/jobs/"+job.ID.String())
	respondJSON(w, http.StatusCreated, mapper.ToJobDTO(job))
}

// GetHistory godoc
// @Summary Get quote stage history
// @Description Get the ordered log of status transitions for a quote
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 200 {array} domain.QuoteStageHistoryDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /quotes/{id}/history [get]
func (h *QuoteHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	history, err := h.quoteService.GetStageHistory(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get quote history")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteStageHistoryDTOs(history))
}
