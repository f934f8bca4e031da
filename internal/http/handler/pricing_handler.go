package handler

import (
	"encoding/json"
	"net/http"

	"github.com/samedayramps/ramp-api/internal/domain"
	"github.com/samedayramps/ramp-api/internal/mapper"
	"github.com/samedayramps/ramp-api/internal/service"
	"go.uber.org/zap"
)

type PricingHandler struct {
	pricingService *service.PricingService
	logger         *zap.Logger
}

func NewPricingHandler(pricingService *service.PricingService, logger *zap.Logger) *PricingHandler {
	return &PricingHandler{
		pricingService: pricingService,
		logger:         logger,
	}
}

// GetVariables godoc
// @Summary Get pricing variables
// @Description Get the current pricing configuration. Requires the admin API key.
// @Tags Pricing
// @Accept json
// @Produce json
// @Success 200 {object} domain.PricingVariablesDTO
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError "Pricing not configured"
// @Security ApiKeyAuth
// @Router /settings/pricing [get]
func (h *PricingHandler) GetVariables(w http.ResponseWriter, r *http.Request) {
	vars, err := h.pricingService.GetVariables(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get pricing variables")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToPricingVariablesDTO(vars))
}

// UpdateVariables godoc
// @Summary Update pricing variables
// @Description Replace the pricing configuration. Existing quotes keep their frozen pricing snapshots. Requires the admin API key.
// @Tags Pricing
// @Accept json
// @Produce json
// @Param request body domain.UpdatePricingVariablesRequest true "Pricing variables"
// @Success 200 {object} domain.PricingVariablesDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /settings/pricing [put]
func (h *PricingHandler) UpdateVariables(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdatePricingVariablesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	vars, err := h.pricingService.UpdateVariables(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update pricing variables")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToPricingVariablesDTO(vars))
}

// Calculate godoc
// @Summary Calculate pricing
// @Description Ad-hoc pricing calculation for a ramp configuration. Does not persist anything.
// @Tags Pricing
// @Accept json
// @Produce json
// @Param request body domain.CalculatePricingRequest true "Ramp configuration"
// @Success 200 {object} domain.PricingResult
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError "Pricing not configured"
// @Failure 502 {object} domain.APIError "Distance lookup failed"
// @Router /pricing/calculate [post]
func (h *PricingHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req domain.CalculatePricingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	components := make(domain.RampComponents, len(req.Components))
	for i, c := range req.Components {
		components[i] = domain.RampComponent{
			Kind:       c.Kind,
			LengthFeet: c.LengthFeet,
			Quantity:   c.Quantity,
		}
	}

	result, err := h.pricingService.Calculate(r.Context(), components, req.TotalLengthFt, req.InstallAddress, "")
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to calculate pricing")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
