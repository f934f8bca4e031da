package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samedayramps/ramp-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type jobFixture struct {
	svc        *JobService
	jobs       *fakeJobStore
	quotes     *fakeQuoteStore
	history    *fakeHistoryStore
	activities *fakeActivityStore
	calendar   *fakeCalendar
	push       *fakePush
}

func newJobFixture(quotes ...*domain.Quote) *jobFixture {
	f := &jobFixture{
		quotes:     newFakeQuoteStore(quotes...),
		history:    &fakeHistoryStore{},
		activities: &fakeActivityStore{},
		calendar:   &fakeCalendar{eventID: "cal-event-1"},
		push:       &fakePush{},
	}
	f.jobs = newFakeJobStore(f.quotes)
	f.svc = NewJobService(f.jobs, f.quotes, f.history, f.activities, f.calendar, f.push, zap.NewNop())
	return f
}

func paidAcceptedQuote() *domain.Quote {
	quote := draftQuote()
	quote.Status = domain.QuoteStatusAccepted
	quote.PaymentStatus = domain.PaymentStatusPaid
	return quote
}

func TestCreateJobFromQuote(t *testing.T) {
	quote := paidAcceptedQuote()
	f := newJobFixture(quote)

	before := time.Now()
	job, err := f.svc.CreateJobFromQuote(context.Background(), quote.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, quote.ID, job.QuoteID)
	assert.Equal(t, quote.CustomerID, job.CustomerID)
	assert.Equal(t, quote.InstallAddress, job.InstallAddress)
	assert.Equal(t, quote.Components, job.Components)
	assert.Equal(t, quote.TotalLengthFt, job.TotalLengthFt)
	assert.Equal(t, domain.JobStatusScheduled, job.Status)

	// Default installation date is a week out
	expected := before.Add(7 * 24 * time.Hour)
	assert.WithinDuration(t, expected, job.ScheduledInstallationDate, time.Minute)

	stored := f.quotes.quotes[quote.ID]
	assert.Equal(t, domain.QuoteStatusJobCreated, stored.Status)
	require.NotNil(t, stored.JobID)
	assert.Equal(t, job.ID, *stored.JobID)

	assert.Equal(t, 1, f.calendar.created)
	assert.Equal(t, "cal-event-1", f.jobs.jobs[job.ID].CalendarEventID)
}

func TestCreateJobFromQuote_ExplicitDate(t *testing.T) {
	quote := paidAcceptedQuote()
	f := newJobFixture(quote)

	date := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	job, err := f.svc.CreateJobFromQuote(context.Background(), quote.ID, &domain.CreateJobRequest{
		ScheduledInstallationDate: &date,
		Notes:                     "gate code 4411",
	})
	require.NoError(t, err)
	assert.Equal(t, date, job.ScheduledInstallationDate)
	assert.Equal(t, "gate code 4411", job.Notes)
}

func TestCreateJobFromQuote_NotPaid(t *testing.T) {
	quote := paidAcceptedQuote()
	quote.PaymentStatus = domain.PaymentStatusPending
	f := newJobFixture(quote)

	_, err := f.svc.CreateJobFromQuote(context.Background(), quote.ID, nil)
	assert.ErrorIs(t, err, ErrPaymentRequired)
	assert.Empty(t, f.jobs.jobs)
}

func TestCreateJobFromQuote_NotAccepted(t *testing.T) {
	quote := paidAcceptedQuote()
	quote.Status = domain.QuoteStatusSent
	f := newJobFixture(quote)

	_, err := f.svc.CreateJobFromQuote(context.Background(), quote.ID, nil)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateJobFromQuote_AlreadyHasJob(t *testing.T) {
	quote := paidAcceptedQuote()
	jobID := uuid.New()
	quote.JobID = &jobID
	f := newJobFixture(quote)

	_, err := f.svc.CreateJobFromQuote(context.Background(), quote.ID, nil)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateJobFromQuote_NotFound(t *testing.T) {
	f := newJobFixture()
	_, err := f.svc.CreateJobFromQuote(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateJobFromQuote_CalendarFailureIsNotFatal(t *testing.T) {
	quote := paidAcceptedQuote()
	f := newJobFixture(quote)
	f.calendar.createErr = errors.New("calendar down")

	job, err := f.svc.CreateJobFromQuote(context.Background(), quote.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, f.jobs.jobs[job.ID].CalendarEventID)
	assert.Equal(t, domain.QuoteStatusJobCreated, f.quotes.quotes[quote.ID].Status)
}

func TestReschedule(t *testing.T) {
	quote := paidAcceptedQuote()
	f := newJobFixture(quote)
	job, err := f.svc.CreateJobFromQuote(context.Background(), quote.ID, nil)
	require.NoError(t, err)

	date := time.Date(2026, 11, 15, 13, 0, 0, 0, time.UTC)
	updated, err := f.svc.Reschedule(context.Background(), job.ID, date)
	require.NoError(t, err)
	assert.Equal(t, date, updated.ScheduledInstallationDate)
	assert.Equal(t, date, f.jobs.jobs[job.ID].ScheduledInstallationDate)
	assert.Equal(t, 1, f.calendar.updated)
}

func TestComplete(t *testing.T) {
	quote := paidAcceptedQuote()
	f := newJobFixture(quote)
	job, err := f.svc.CreateJobFromQuote(context.Background(), quote.ID, nil)
	require.NoError(t, err)

	completed, err := f.svc.Complete(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)
	assert.Equal(t, domain.QuoteStatusCompleted, f.quotes.quotes[quote.ID].Status,
		"completing the job completes the parent quote")
}

func TestComplete_AlreadyCompleted(t *testing.T) {
	quote := paidAcceptedQuote()
	f := newJobFixture(quote)
	job, err := f.svc.CreateJobFromQuote(context.Background(), quote.ID, nil)
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), job.ID)
	require.NoError(t, err)
	_, err = f.svc.Complete(context.Background(), job.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCancel(t *testing.T) {
	quote := paidAcceptedQuote()
	f := newJobFixture(quote)
	job, err := f.svc.CreateJobFromQuote(context.Background(), quote.ID, nil)
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(context.Background(), job.ID, "customer postponed")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCancelled, cancelled.Status)
	assert.Equal(t, []string{"cal-event-1"}, f.calendar.deleted)
}
