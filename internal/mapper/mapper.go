package mapper

import (
	"time"

	"github.com/samedayramps/ramp-api/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// ToRentalRequestDTO converts a rental request model to its API representation
func ToRentalRequestDTO(r *domain.RentalRequest) domain.RentalRequestDTO {
	return domain.RentalRequestDTO{
		ID:                r.ID,
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		FullName:          r.FullName(),
		Email:             r.Email,
		Phone:             r.Phone,
		InstallAddress:    r.InstallAddress,
		EstimatedLengthFt: r.EstimatedLengthFt,
		Timeline:          r.Timeline,
		RampPurpose:       r.RampPurpose,
		MobilityAids:      r.MobilityAids,
		Notes:             r.Notes,
		Status:            r.Status,
		CustomerID:        r.CustomerID,
		CreatedAt:         formatTime(r.CreatedAt),
		UpdatedAt:         formatTime(r.UpdatedAt),
	}
}

func ToRentalRequestDTOs(requests []domain.RentalRequest) []domain.RentalRequestDTO {
	dtos := make([]domain.RentalRequestDTO, len(requests))
	for i := range requests {
		dtos[i] = ToRentalRequestDTO(&requests[i])
	}
	return dtos
}

// ToCustomerDTO converts a customer model to its API representation
func ToCustomerDTO(c *domain.Customer) domain.CustomerDTO {
	return domain.CustomerDTO{
		ID:              c.ID,
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		FullName:        c.FullName(),
		Email:           c.Email,
		Phone:           c.Phone,
		InstallAddress:  c.InstallAddress,
		MobilityAids:    c.MobilityAids,
		Notes:           c.Notes,
		RentalRequestID: c.RentalRequestID,
		CreatedAt:       formatTime(c.CreatedAt),
		UpdatedAt:       formatTime(c.UpdatedAt),
	}
}

func ToCustomerDTOs(customers []domain.Customer) []domain.CustomerDTO {
	dtos := make([]domain.CustomerDTO, len(customers))
	for i := range customers {
		dtos[i] = ToCustomerDTO(&customers[i])
	}
	return dtos
}

// ToCustomerWithQuotesDTO includes the customer's quotes
func ToCustomerWithQuotesDTO(c *domain.Customer) domain.CustomerWithQuotesDTO {
	return domain.CustomerWithQuotesDTO{
		CustomerDTO: ToCustomerDTO(c),
		Quotes:      ToQuoteDTOs(c.Quotes),
	}
}

func toComponentDTOs(components domain.RampComponents) []domain.RampComponentDTO {
	dtos := make([]domain.RampComponentDTO, len(components))
	for i, comp := range components {
		dtos[i] = domain.RampComponentDTO{
			Kind:       comp.Kind,
			LengthFeet: comp.LengthFeet,
			Quantity:   comp.Quantity,
		}
	}
	return dtos
}

// ToQuoteDTO converts a quote model to its API representation
func ToQuoteDTO(q *domain.Quote) domain.QuoteDTO {
	dto := domain.QuoteDTO{
		ID:                q.ID,
		CustomerID:        q.CustomerID,
		InstallAddress:    q.InstallAddress,
		Components:        toComponentDTOs(q.Components),
		TotalLengthFt:     q.TotalLengthFt,
		DeliveryFee:       q.DeliveryFee,
		InstallFee:        q.InstallFee,
		MonthlyRentalRate: q.MonthlyRentalRate,
		TotalUpfront:      q.TotalUpfront,
		DistanceMiles:     q.DistanceMiles,
		Status:            q.Status,
		PaymentStatus:     q.PaymentStatus,
		AgreementStatus:   q.AgreementStatus,
		SentAt:            formatTimePtr(q.SentAt),
		AcceptedAt:        formatTimePtr(q.AcceptedAt),
		PaymentLinkURL:    q.PaymentLinkURL,
		SigningURL:        q.SigningURL,
		JobID:             q.JobID,
		Notes:             q.Notes,
		CreatedAt:         formatTime(q.CreatedAt),
		UpdatedAt:         formatTime(q.UpdatedAt),
	}
	if q.Customer != nil {
		dto.CustomerName = q.Customer.FullName()
	}
	return dto
}

func ToQuoteDTOs(quotes []domain.Quote) []domain.QuoteDTO {
	dtos := make([]domain.QuoteDTO, len(quotes))
	for i := range quotes {
		dtos[i] = ToQuoteDTO(&quotes[i])
	}
	return dtos
}

// ToQuoteStageHistoryDTO converts a stage history record
func ToQuoteStageHistoryDTO(h *domain.QuoteStageHistory) domain.QuoteStageHistoryDTO {
	return domain.QuoteStageHistoryDTO{
		ID:         h.ID,
		QuoteID:    h.QuoteID,
		FromStatus: h.FromStatus,
		ToStatus:   h.ToStatus,
		Notes:      h.Notes,
		ChangedAt:  formatTime(h.ChangedAt),
	}
}

func ToQuoteStageHistoryDTOs(history []domain.QuoteStageHistory) []domain.QuoteStageHistoryDTO {
	dtos := make([]domain.QuoteStageHistoryDTO, len(history))
	for i := range history {
		dtos[i] = ToQuoteStageHistoryDTO(&history[i])
	}
	return dtos
}

// ToJobDTO converts a job model to its API representation
func ToJobDTO(j *domain.Job) domain.JobDTO {
	dto := domain.JobDTO{
		ID:                        j.ID,
		QuoteID:                   j.QuoteID,
		CustomerID:                j.CustomerID,
		InstallAddress:            j.InstallAddress,
		Components:                toComponentDTOs(j.Components),
		TotalLengthFt:             j.TotalLengthFt,
		Status:                    j.Status,
		ScheduledInstallationDate: formatTime(j.ScheduledInstallationDate),
		CompletedAt:               formatTimePtr(j.CompletedAt),
		Notes:                     j.Notes,
		CreatedAt:                 formatTime(j.CreatedAt),
		UpdatedAt:                 formatTime(j.UpdatedAt),
	}
	if j.Customer != nil {
		dto.CustomerName = j.Customer.FullName()
	}
	return dto
}

func ToJobDTOs(jobs []domain.Job) []domain.JobDTO {
	dtos := make([]domain.JobDTO, len(jobs))
	for i := range jobs {
		dtos[i] = ToJobDTO(&jobs[i])
	}
	return dtos
}

// ToPricingVariablesDTO converts the pricing configuration
func ToPricingVariablesDTO(v *domain.PricingVariables) domain.PricingVariablesDTO {
	return domain.PricingVariablesDTO{
		WarehouseAddress:       v.WarehouseAddress,
		BaseDeliveryFee:        v.BaseDeliveryFee,
		DeliveryFeePerMile:     v.DeliveryFeePerMile,
		BaseInstallFee:         v.BaseInstallFee,
		InstallFeePerComponent: v.InstallFeePerComponent,
		RentalRatePerFt:        v.RentalRatePerFt,
		UpdatedAt:              formatTime(v.UpdatedAt),
	}
}

// ToActivityDTO converts an activity record
func ToActivityDTO(a *domain.Activity) domain.ActivityDTO {
	return domain.ActivityDTO{
		ID:         a.ID,
		TargetType: a.TargetType,
		TargetID:   a.TargetID,
		Title:      a.Title,
		Body:       a.Body,
		OccurredAt: formatTime(a.OccurredAt),
		CreatedAt:  formatTime(a.CreatedAt),
	}
}

func ToActivityDTOs(activities []domain.Activity) []domain.ActivityDTO {
	dtos := make([]domain.ActivityDTO, len(activities))
	for i := range activities {
		dtos[i] = ToActivityDTO(&activities[i])
	}
	return dtos
}
