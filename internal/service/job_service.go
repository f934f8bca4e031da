package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samedayramps/ramp-api/internal/domain"
	"github.com/samedayramps/ramp-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// defaultInstallLeadTime is used when no installation date is given
const defaultInstallLeadTime = 7 * 24 * time.Hour

// installationDuration is the calendar block reserved for an installation
const installationDuration = 2 * time.Hour

// JobStore is the persistence surface the job service needs
type JobStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	List(ctx context.Context, filters repository.JobFilters, page, pageSize int) ([]domain.Job, int64, error)
	CreateFromQuote(ctx context.Context, job *domain.Job) error
}

// JobService turns accepted, paid quotes into scheduled installations and
// mirrors them onto the operations calendar. Calendar writes are best-effort;
// the local state is authoritative.
type JobService struct {
	jobs       JobStore
	quotes     QuoteStore
	history    StageHistoryStore
	activities ActivityStore
	calendar   CalendarProvider
	push       PushSender
	logger     *zap.Logger
}

func NewJobService(
	jobs JobStore,
	quotes QuoteStore,
	history StageHistoryStore,
	activities ActivityStore,
	calendar CalendarProvider,
	push PushSender,
	logger *zap.Logger,
) *JobService {
	return &JobService{
		jobs:       jobs,
		quotes:     quotes,
		history:    history,
		activities: activities,
		calendar:   calendar,
		push:       push,
		logger:     logger,
	}
}

func (s *JobService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: job %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("getting job: %w", err)
	}
	return job, nil
}

func (s *JobService) List(ctx context.Context, filters repository.JobFilters, page, pageSize int) ([]domain.Job, int64, error) {
	return s.jobs.List(ctx, filters, page, pageSize)
}

// CreateJobFromQuote creates an installation job for an accepted quote whose
// upfront payment has cleared, copying the address and configuration so later
// quote edits can't drift the job.
func (s *JobService) CreateJobFromQuote(ctx context.Context, quoteID uuid.UUID, req *domain.CreateJobRequest) (*domain.Job, error) {
	quote, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: quote %s", ErrNotFound, quoteID)
		}
		return nil, fmt.Errorf("getting quote: %w", err)
	}

	if quote.Status != domain.QuoteStatusAccepted {
		return nil, fmt.Errorf("%w: quote is %s, only accepted quotes can become jobs", ErrConflict, quote.Status)
	}
	if quote.PaymentStatus != domain.PaymentStatusPaid {
		return nil, fmt.Errorf("%w: quote payment is %s", ErrPaymentRequired, quote.PaymentStatus)
	}
	if quote.JobID != nil {
		return nil, fmt.Errorf("%w: quote already has job %s", ErrConflict, quote.JobID)
	}

	scheduledDate := time.Now().Add(defaultInstallLeadTime)
	if req != nil && req.ScheduledInstallationDate != nil {
		scheduledDate = *req.ScheduledInstallationDate
	}

	job := &domain.Job{
		QuoteID:                   quote.ID,
		CustomerID:                quote.CustomerID,
		InstallAddress:            quote.InstallAddress,
		Components:                quote.Components,
		TotalLengthFt:             quote.TotalLengthFt,
		Status:                    domain.JobStatusScheduled,
		ScheduledInstallationDate: scheduledDate,
	}
	if req != nil {
		job.Notes = req.Notes
	}

	if err := s.jobs.CreateFromQuote(ctx, job); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: quote left accepted status concurrently", ErrConflict)
		}
		return nil, fmt.Errorf("creating job: %w", err)
	}

	from := domain.QuoteStatusAccepted
	if err := s.history.RecordTransition(ctx, quote.ID, &from, domain.QuoteStatusJobCreated, "installation job created"); err != nil {
		s.logger.Warn("failed to record stage transition",
			zap.String("quoteId", quote.ID.String()),
			zap.Error(err))
	}

	s.syncCalendarCreate(ctx, job, quote)
	s.recordActivity(ctx, job.ID, "Job created",
		fmt.Sprintf("Installation scheduled for %s", scheduledDate.Format("2006-01-02")))
	s.notifyOperator(ctx, "Job created",
		fmt.Sprintf("Installation at %s scheduled for %s", job.InstallAddress, scheduledDate.Format("2006-01-02")))

	s.logger.Info("job created from quote",
		zap.String("jobId", job.ID.String()),
		zap.String("quoteId", quote.ID.String()),
		zap.Time("scheduledDate", scheduledDate))

	return job, nil
}

// Reschedule moves an installation to a new date
func (s *JobService) Reschedule(ctx context.Context, jobID uuid.UUID, date time.Time) (*domain.Job, error) {
	job, err := s.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobStatusScheduled {
		return nil, fmt.Errorf("%w: job is %s, only scheduled jobs can be rescheduled", ErrConflict, job.Status)
	}

	if err := s.jobs.UpdateFields(ctx, jobID, map[string]interface{}{
		"scheduled_installation_date": date,
	}); err != nil {
		return nil, fmt.Errorf("rescheduling job: %w", err)
	}
	job.ScheduledInstallationDate = date

	if s.calendar != nil && job.CalendarEventID != "" {
		if err := s.calendar.UpdateEvent(ctx, job.CalendarEventID, s.calendarEvent(job)); err != nil {
			s.logger.Warn("failed to update calendar event",
				zap.String("jobId", jobID.String()),
				zap.Error(err))
		}
	}

	s.recordActivity(ctx, jobID, "Job rescheduled",
		fmt.Sprintf("Installation moved to %s", date.Format("2006-01-02")))
	s.logger.Info("job rescheduled",
		zap.String("jobId", jobID.String()),
		zap.Time("scheduledDate", date))

	return job, nil
}

// Complete marks an installation as done and completes the parent quote
func (s *JobService) Complete(ctx context.Context, jobID uuid.UUID) (*domain.Job, error) {
	job, err := s.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobStatusScheduled {
		return nil, fmt.Errorf("%w: job is %s, only scheduled jobs can be completed", ErrConflict, job.Status)
	}

	now := time.Now()
	if err := s.jobs.UpdateFields(ctx, jobID, map[string]interface{}{
		"status":       domain.JobStatusCompleted,
		"completed_at": now,
	}); err != nil {
		return nil, fmt.Errorf("completing job: %w", err)
	}
	job.Status = domain.JobStatusCompleted
	job.CompletedAt = &now

	ok, err := s.quotes.TransitionStatus(ctx, job.QuoteID,
		[]domain.QuoteStatus{domain.QuoteStatusJobCreated},
		domain.QuoteStatusCompleted, nil)
	if err != nil {
		s.logger.Warn("failed to complete parent quote",
			zap.String("quoteId", job.QuoteID.String()),
			zap.Error(err))
	} else if ok {
		from := domain.QuoteStatusJobCreated
		if err := s.history.RecordTransition(ctx, job.QuoteID, &from, domain.QuoteStatusCompleted, "installation completed"); err != nil {
			s.logger.Warn("failed to record stage transition",
				zap.String("quoteId", job.QuoteID.String()),
				zap.Error(err))
		}
	}

	s.recordActivity(ctx, jobID, "Job completed", "")
	s.notifyOperator(ctx, "Job completed",
		fmt.Sprintf("Installation at %s completed", job.InstallAddress))
	s.logger.Info("job completed", zap.String("jobId", jobID.String()))

	return job, nil
}

// Cancel cancels a scheduled installation and removes its calendar event
func (s *JobService) Cancel(ctx context.Context, jobID uuid.UUID, reason string) (*domain.Job, error) {
	job, err := s.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobStatusScheduled {
		return nil, fmt.Errorf("%w: job is %s, only scheduled jobs can be cancelled", ErrConflict, job.Status)
	}

	if err := s.jobs.UpdateFields(ctx, jobID, map[string]interface{}{
		"status": domain.JobStatusCancelled,
	}); err != nil {
		return nil, fmt.Errorf("cancelling job: %w", err)
	}
	job.Status = domain.JobStatusCancelled

	if s.calendar != nil && job.CalendarEventID != "" {
		if err := s.calendar.DeleteEvent(ctx, job.CalendarEventID); err != nil {
			s.logger.Warn("failed to delete calendar event",
				zap.String("jobId", jobID.String()),
				zap.Error(err))
		}
	}

	s.recordActivity(ctx, jobID, "Job cancelled", reason)
	s.logger.Info("job cancelled", zap.String("jobId", jobID.String()))

	return job, nil
}

func (s *JobService) calendarEvent(job *domain.Job) CalendarEvent {
	customerName := ""
	if job.Customer != nil {
		customerName = job.Customer.FullName()
	}
	return CalendarEvent{
		Title:       fmt.Sprintf("Ramp installation, %s", job.InstallAddress),
		Description: fmt.Sprintf("Customer: %s\nTotal length: %.0f ft", customerName, job.TotalLengthFt),
		Location:    job.InstallAddress,
		Start:       job.ScheduledInstallationDate,
		End:         job.ScheduledInstallationDate.Add(installationDuration),
	}
}

func (s *JobService) syncCalendarCreate(ctx context.Context, job *domain.Job, quote *domain.Quote) {
	if s.calendar == nil {
		return
	}
	job.Customer = quote.Customer
	eventID, err := s.calendar.CreateEvent(ctx, s.calendarEvent(job))
	if err != nil {
		s.logger.Warn("failed to create calendar event",
			zap.String("jobId", job.ID.String()),
			zap.Error(err))
		return
	}
	if err := s.jobs.UpdateFields(ctx, job.ID, map[string]interface{}{
		"calendar_event_id": eventID,
	}); err != nil {
		s.logger.Warn("failed to persist calendar event id",
			zap.String("jobId", job.ID.String()),
			zap.Error(err))
		return
	}
	job.CalendarEventID = eventID
}

func (s *JobService) recordActivity(ctx context.Context, jobID uuid.UUID, title, body string) {
	activity := &domain.Activity{
		TargetType: domain.ActivityTargetJob,
		TargetID:   jobID,
		Title:      title,
		Body:       body,
		OccurredAt: time.Now(),
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to record activity",
			zap.String("jobId", jobID.String()),
			zap.Error(err))
	}
}

func (s *JobService) notifyOperator(ctx context.Context, title, message string) {
	if s.push == nil {
		return
	}
	if err := s.push.Notify(ctx, title, message); err != nil {
		s.logger.Warn("push notification failed", zap.String("title", title), zap.Error(err))
	}
}
