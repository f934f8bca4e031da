package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/samedayramps/ramp-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type requestFixture struct {
	svc      *RentalRequestService
	requests *fakeRequestStore
	push     *fakePush
}

func newRequestFixture(requests ...*domain.RentalRequest) *requestFixture {
	f := &requestFixture{
		requests: newFakeRequestStore(requests...),
		push:     &fakePush{},
	}
	f.svc = NewRentalRequestService(f.requests, f.push, zap.NewNop())
	return f
}

func newIntakeRequest() *domain.RentalRequest {
	return &domain.RentalRequest{
		BaseModel:      domain.BaseModel{ID: uuid.New()},
		FirstName:      "Pat",
		LastName:       "Miller",
		Email:          "pat@example.com",
		Phone:          "555-0100",
		InstallAddress: "12 Oak St, Dallas TX",
		MobilityAids:   []string{"wheelchair"},
		Status:         domain.RentalRequestStatusNew,
	}
}

func TestRentalRequestCreate(t *testing.T) {
	f := newRequestFixture()

	request, err := f.svc.Create(context.Background(), &domain.CreateRentalRequestRequest{
		FirstName:      "Pat",
		LastName:       "Miller",
		Email:          "pat@example.com",
		Phone:          "555-0100",
		InstallAddress: "12 Oak St, Dallas TX",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RentalRequestStatusNew, request.Status)
	assert.NotEqual(t, uuid.Nil, request.ID)
	assert.Equal(t, []string{"New rental request"}, f.push.notifications)
}

func TestRentalRequestCreate_NoPushConfigured(t *testing.T) {
	requests := newFakeRequestStore()
	svc := NewRentalRequestService(requests, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), &domain.CreateRentalRequestRequest{
		FirstName:      "Pat",
		LastName:       "Miller",
		Email:          "pat@example.com",
		Phone:          "555-0100",
		InstallAddress: "12 Oak St, Dallas TX",
	})
	require.NoError(t, err)
}

func TestRentalRequestUpdateStatus(t *testing.T) {
	request := newIntakeRequest()
	f := newRequestFixture(request)

	updated, err := f.svc.UpdateStatus(context.Background(), request.ID, domain.RentalRequestStatusContacted)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalRequestStatusContacted, updated.Status)
}

func TestRentalRequestUpdateStatus_InvalidStatus(t *testing.T) {
	request := newIntakeRequest()
	f := newRequestFixture(request)

	_, err := f.svc.UpdateStatus(context.Background(), request.ID, "bogus")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRentalRequestUpdateStatus_ConvertedViaStatus(t *testing.T) {
	request := newIntakeRequest()
	f := newRequestFixture(request)

	_, err := f.svc.UpdateStatus(context.Background(), request.ID, domain.RentalRequestStatusConverted)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRentalRequestUpdateStatus_AfterConversion(t *testing.T) {
	request := newIntakeRequest()
	request.Status = domain.RentalRequestStatusConverted
	f := newRequestFixture(request)

	_, err := f.svc.UpdateStatus(context.Background(), request.ID, domain.RentalRequestStatusArchived)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestConvertToCustomer(t *testing.T) {
	request := newIntakeRequest()
	f := newRequestFixture(request)

	customer, err := f.svc.ConvertToCustomer(context.Background(), request.ID)
	require.NoError(t, err)

	assert.Equal(t, request.FirstName, customer.FirstName)
	assert.Equal(t, request.Email, customer.Email)
	assert.Equal(t, request.InstallAddress, customer.InstallAddress)
	require.NotNil(t, customer.RentalRequestID)
	assert.Equal(t, request.ID, *customer.RentalRequestID)

	stored, err := f.requests.GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalRequestStatusConverted, stored.Status)
	require.NotNil(t, stored.CustomerID)
	assert.Equal(t, customer.ID, *stored.CustomerID)
}

func TestConvertToCustomer_Twice(t *testing.T) {
	request := newIntakeRequest()
	f := newRequestFixture(request)

	_, err := f.svc.ConvertToCustomer(context.Background(), request.ID)
	require.NoError(t, err)

	_, err = f.svc.ConvertToCustomer(context.Background(), request.ID)
	assert.ErrorIs(t, err, ErrAlreadyConverted)
	assert.Len(t, f.requests.customers, 1)
}

func TestConvertToCustomer_LostRace(t *testing.T) {
	request := newIntakeRequest()
	f := newRequestFixture(request)
	f.requests.convertErr = gorm.ErrRecordNotFound

	_, err := f.svc.ConvertToCustomer(context.Background(), request.ID)
	assert.ErrorIs(t, err, ErrAlreadyConverted)
}

func TestConvertToCustomer_NotFound(t *testing.T) {
	f := newRequestFixture()

	_, err := f.svc.ConvertToCustomer(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConvertToCustomer_StoreFailure(t *testing.T) {
	request := newIntakeRequest()
	f := newRequestFixture(request)
	f.requests.convertErr = errors.New("connection reset")

	_, err := f.svc.ConvertToCustomer(context.Background(), request.ID)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyConverted)
}