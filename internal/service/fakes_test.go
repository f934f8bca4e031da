package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/samedayramps/ramp-api/internal/domain"
	"github.com/samedayramps/ramp-api/internal/repository"
	"gorm.io/gorm"
)

// In-memory fakes for the store and collaborator interfaces.

type fakePricingStore struct {
	vars *domain.PricingVariables
	err  error
}

func (f *fakePricingStore) GetCurrent(ctx context.Context) (*domain.PricingVariables, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.vars == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.vars, nil
}

func (f *fakePricingStore) Upsert(ctx context.Context, vars *domain.PricingVariables) error {
	if f.err != nil {
		return f.err
	}
	f.vars = vars
	return nil
}

type fakeDistance struct {
	miles float64
	err   error
	calls int
	origins []string
}

func (f *fakeDistance) Distance(ctx context.Context, origin, destination string) (float64, error) {
	f.calls++
	f.origins = append(f.origins, origin)
	if f.err != nil {
		return 0, f.err
	}
	return f.miles, nil
}

type fakeQuoteStore struct {
	quotes map[uuid.UUID]*domain.Quote
}

func newFakeQuoteStore(quotes ...*domain.Quote) *fakeQuoteStore {
	store := &fakeQuoteStore{quotes: make(map[uuid.UUID]*domain.Quote)}
	for _, q := range quotes {
		store.quotes[q.ID] = q
	}
	return store
}

func (f *fakeQuoteStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	quote, ok := f.quotes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *quote
	return &copied, nil
}

func applyQuoteField(quote *domain.Quote, key string, value interface{}) {
	switch key {
	case "payment_intent_id":
		quote.PaymentIntentID = value.(string)
	case "payment_link_url":
		quote.PaymentLinkURL = value.(string)
	case "agreement_id":
		quote.AgreementID = value.(string)
	case "signing_url":
		quote.SigningURL = value.(string)
	case "agreement_status":
		quote.AgreementStatus = value.(domain.AgreementStatus)
	case "payment_status":
		quote.PaymentStatus = value.(domain.PaymentStatus)
	case "manual_signature_name":
		quote.ManualSignatureName = value.(string)
	case "manual_signed_at":
		t := value.(time.Time)
		quote.ManualSignedAt = &t
	case "sent_at":
		t := value.(time.Time)
		quote.SentAt = &t
	case "accepted_at":
		t := value.(time.Time)
		quote.AcceptedAt = &t
	case "job_id":
		id := value.(uuid.UUID)
		quote.JobID = &id
	}
}

func (f *fakeQuoteStore) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	quote, ok := f.quotes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		applyQuoteField(quote, k, v)
	}
	return nil
}

func (f *fakeQuoteStore) TransitionStatus(ctx context.Context, id uuid.UUID, from []domain.QuoteStatus, to domain.QuoteStatus, extra map[string]interface{}) (bool, error) {
	quote, ok := f.quotes[id]
	if !ok {
		return false, nil
	}
	allowed := false
	for _, status := range from {
		if quote.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, nil
	}
	quote.Status = to
	for k, v := range extra {
		applyQuoteField(quote, k, v)
	}
	return true, nil
}

func (f *fakeQuoteStore) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Quote, error) {
	for _, quote := range f.quotes {
		if quote.PaymentIntentID == paymentIntentID && paymentIntentID != "" {
			copied := *quote
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeQuoteStore) GetByAgreementID(ctx context.Context, agreementID string) (*domain.Quote, error) {
	for _, quote := range f.quotes {
		if quote.AgreementID == agreementID && agreementID != "" {
			copied := *quote
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeQuoteStore) ListByAgreementStatus(ctx context.Context, statuses []domain.AgreementStatus) ([]domain.Quote, error) {
	var result []domain.Quote
	for _, quote := range f.quotes {
		if quote.AgreementID == "" {
			continue
		}
		for _, status := range statuses {
			if quote.AgreementStatus == status {
				result = append(result, *quote)
				break
			}
		}
	}
	return result, nil
}

type recordedTransition struct {
	quoteID uuid.UUID
	from    *domain.QuoteStatus
	to      domain.QuoteStatus
	notes   string
}

type fakeHistoryStore struct {
	transitions []recordedTransition
	err         error
}

func (f *fakeHistoryStore) RecordTransition(ctx context.Context, quoteID uuid.UUID, fromStatus *domain.QuoteStatus, toStatus domain.QuoteStatus, notes string) error {
	if f.err != nil {
		return f.err
	}
	f.transitions = append(f.transitions, recordedTransition{quoteID, fromStatus, toStatus, notes})
	return nil
}

type fakeActivityStore struct {
	activities []domain.Activity
}

func (f *fakeActivityStore) Create(ctx context.Context, activity *domain.Activity) error {
	f.activities = append(f.activities, *activity)
	return nil
}

type fakeTokens struct {
	valid map[string]string // token -> quoteID
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{valid: make(map[string]string)}
}

func (f *fakeTokens) Generate(quoteID string) (string, error) {
	token := "token-" + quoteID
	f.valid[token] = quoteID
	return token, nil
}

func (f *fakeTokens) Verify(token, quoteID string) error {
	if f.valid[token] != quoteID {
		return errors.New("bad token")
	}
	return nil
}

type fakePayments struct {
	link  *PaymentLink
	err   error
	calls int
}

func (f *fakePayments) CreatePaymentLink(ctx context.Context, amountCents int64, description string, metadata map[string]string) (*PaymentLink, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.link, nil
}

type fakeAgreements struct {
	agreement  *Agreement
	createErr  error
	status     domain.AgreementStatus
	statusErr  error
	calls      int
	statusCalls int
}

func (f *fakeAgreements) CreateAgreement(ctx context.Context, req AgreementRequest) (*Agreement, error) {
	f.calls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.agreement, nil
}

func (f *fakeAgreements) GetAgreementStatus(ctx context.Context, agreementID string) (domain.AgreementStatus, error) {
	f.statusCalls++
	if f.statusErr != nil {
		return "", f.statusErr
	}
	return f.status, nil
}

type sentEmail struct {
	to      string
	subject string
	html    string
}

type fakeEmail struct {
	sent []sentEmail
	err  error
}

func (f *fakeEmail) Send(ctx context.Context, to, subject, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{to, subject, htmlBody})
	return nil
}

type fakePush struct {
	notifications []string
}

func (f *fakePush) Notify(ctx context.Context, title, message string) error {
	f.notifications = append(f.notifications, title)
	return nil
}

type fakeCalendar struct {
	eventID    string
	createErr  error
	created    int
	updated    int
	deleted    []string
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, event CalendarEvent) (string, error) {
	f.created++
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.eventID, nil
}

func (f *fakeCalendar) UpdateEvent(ctx context.Context, eventID string, event CalendarEvent) error {
	f.updated++
	return nil
}

func (f *fakeCalendar) DeleteEvent(ctx context.Context, eventID string) error {
	f.deleted = append(f.deleted, eventID)
	return nil
}

type fakeRequestStore struct {
	requests   map[uuid.UUID]*domain.RentalRequest
	customers  []*domain.Customer
	convertErr error
}

func newFakeRequestStore(requests ...*domain.RentalRequest) *fakeRequestStore {
	store := &fakeRequestStore{requests: make(map[uuid.UUID]*domain.RentalRequest)}
	for _, r := range requests {
		store.requests[r.ID] = r
	}
	return store
}

func (f *fakeRequestStore) Create(ctx context.Context, request *domain.RentalRequest) error {
	request.ID = uuid.New()
	f.requests[request.ID] = request
	return nil
}

func (f *fakeRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.RentalRequest, error) {
	request, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *request
	return &copied, nil
}

func (f *fakeRequestStore) Update(ctx context.Context, request *domain.RentalRequest) error {
	if _, ok := f.requests[request.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *request
	f.requests[request.ID] = &copied
	return nil
}

func (f *fakeRequestStore) List(ctx context.Context, filters repository.RentalRequestFilters, page, pageSize int) ([]domain.RentalRequest, int64, error) {
	var requests []domain.RentalRequest
	for _, r := range f.requests {
		requests = append(requests, *r)
	}
	return requests, int64(len(requests)), nil
}

func (f *fakeRequestStore) ConvertToCustomer(ctx context.Context, request *domain.RentalRequest, customer *domain.Customer) error {
	if f.convertErr != nil {
		return f.convertErr
	}
	stored, ok := f.requests[request.ID]
	if !ok || stored.Status == domain.RentalRequestStatusConverted {
		return gorm.ErrRecordNotFound
	}
	customer.ID = uuid.New()
	customer.RentalRequestID = &request.ID
	f.customers = append(f.customers, customer)
	stored.Status = domain.RentalRequestStatusConverted
	customerID := customer.ID
	stored.CustomerID = &customerID
	return nil
}

type fakeJobStore struct {
	jobs   map[uuid.UUID]*domain.Job
	quotes *fakeQuoteStore
}

func newFakeJobStore(quotes *fakeQuoteStore) *fakeJobStore {
	return &fakeJobStore{jobs: make(map[uuid.UUID]*domain.Job), quotes: quotes}
}

func (f *fakeJobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *job
	return &copied, nil
}

func (f *fakeJobStore) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	job, ok := f.jobs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			job.Status = v.(domain.JobStatus)
		case "completed_at":
			t := v.(time.Time)
			job.CompletedAt = &t
		case "scheduled_installation_date":
			job.ScheduledInstallationDate = v.(time.Time)
		case "calendar_event_id":
			job.CalendarEventID = v.(string)
		}
	}
	return nil
}

func (f *fakeJobStore) List(ctx context.Context, filters repository.JobFilters, page, pageSize int) ([]domain.Job, int64, error) {
	var jobs []domain.Job
	for _, job := range f.jobs {
		jobs = append(jobs, *job)
	}
	return jobs, int64(len(jobs)), nil
}

func (f *fakeJobStore) CreateFromQuote(ctx context.Context, job *domain.Job) error {
	quote, ok := f.quotes.quotes[job.QuoteID]
	if !ok || quote.Status != domain.QuoteStatusAccepted {
		return gorm.ErrRecordNotFound
	}
	job.ID = uuid.New()
	f.jobs[job.ID] = job
	quote.Status = domain.QuoteStatusJobCreated
	jobID := job.ID
	quote.JobID = &jobID
	return nil
}
