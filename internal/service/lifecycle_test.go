package service

import (
	"context"
	"testing"

	"cafe-kiosk/internal/events"
	"cafe-kiosk/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pendingOrder(userID *uuid.UUID) *model.Order {
	return &model.Order{
		ID:         uuid.New(),
		Code:       "K9XQ2M7A",
		UserID:     userID,
		BranchID:   uuid.New(),
		Status:     model.StatusPendiente,
		TotalCents: 9000,
		Version:    1,
	}
}

func TestOrderService_Transition_Valid(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	order := pendingOrder(&userID)
	items := []model.LineItem{
		{ID: uuid.New(), OrderID: order.ID, ProductID: "CAF-001", Quantity: 1, UnitPriceCents: 250, SubtotalCents: 250},
	}

	mockOrderRepo := new(MockOrderRepository)
	mockProfileRepo := new(MockProfileRepository)
	mockTx := new(MockTx)

	service := newTestOrderService(mockOrderRepo, mockProfileRepo)

	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("GetByCodeForUpdate", ctx, mockTx, order.Code).Return(order, nil)
	mockOrderRepo.On("GetItems", ctx, mockTx, order.ID).Return(items, nil)
	mockOrderRepo.On("UpdateStatus", ctx, mockTx, order.ID, model.StatusPreparando, 0, 1).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	resp, err := service.Transition(ctx, order.Code, model.StatusPreparando)

	require.NoError(t, err)
	assert.Equal(t, model.StatusPreparando, resp.Order.Status)
	assert.Equal(t, 2, resp.Order.Version)

	mockOrderRepo.AssertExpectations(t)
	mockProfileRepo.AssertNotCalled(t, "Credit")
}

func TestOrderService_Transition_Invalid(t *testing.T) {
	ctx := context.Background()
	order := pendingOrder(nil)
	order.Status = model.StatusRecogido

	mockOrderRepo := new(MockOrderRepository)
	mockProfileRepo := new(MockProfileRepository)
	mockTx := new(MockTx)

	service := newTestOrderService(mockOrderRepo, mockProfileRepo)

	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("GetByCodeForUpdate", ctx, mockTx, order.Code).Return(order, nil)
	mockTx.On("Rollback", ctx).Return(nil)

	resp, err := service.Transition(ctx, order.Code, model.StatusPreparando)

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	assert.Nil(t, resp)
	assert.Equal(t, model.StatusRecogido, order.Status)

	mockOrderRepo.AssertNotCalled(t, "UpdateStatus")
	mockTx.AssertNotCalled(t, "Commit")
}

func TestOrderService_Transition_NotFound(t *testing.T) {
	ctx := context.Background()

	mockOrderRepo := new(MockOrderRepository)
	mockProfileRepo := new(MockProfileRepository)
	mockTx := new(MockTx)

	service := newTestOrderService(mockOrderRepo, mockProfileRepo)

	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("GetByCodeForUpdate", ctx, mockTx, "NOPE0000").Return(nil, nil)
	mockTx.On("Rollback", ctx).Return(nil)

	resp, err := service.Transition(ctx, "NOPE0000", model.StatusPreparando)

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
	assert.Nil(t, resp)
}

func TestOrderService_Transition_PagadoSettles(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	order := pendingOrder(&userID)
	order.Status = model.StatusListo

	// 90.00 total earns 15 base points; two units of a bonus-3 product add 6.
	items := []model.LineItem{
		{ID: uuid.New(), OrderID: order.ID, ProductID: "PAS-010", Quantity: 2, UnitPriceCents: 4500, SubtotalCents: 9000},
	}

	gateway := testCatalog()
	gateway.Put(model.Product{ID: "PAS-010", Name: "Tarta entera", PriceCents: 4500, BonusPoints: 3, Active: true})

	mockOrderRepo := new(MockOrderRepository)
	mockProfileRepo := new(MockProfileRepository)
	mockTx := new(MockTx)

	service := NewOrderService(mockOrderRepo, mockProfileRepo, gateway, events.NopPublisher{}, zerolog.Nop())

	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("GetByCodeForUpdate", ctx, mockTx, order.Code).Return(order, nil)
	mockOrderRepo.On("GetItems", ctx, mockTx, order.ID).Return(items, nil)
	mockProfileRepo.On("Credit", ctx, mockTx, userID, 21).Return(nil)
	mockOrderRepo.On("UpdateStatus", ctx, mockTx, order.ID, model.StatusPagado, 21, 1).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	resp, err := service.Transition(ctx, order.Code, model.StatusPagado)

	require.NoError(t, err)
	assert.Equal(t, model.StatusPagado, resp.Order.Status)
	assert.Equal(t, 21, resp.Order.PointsAwarded)

	mockProfileRepo.AssertExpectations(t)
	mockOrderRepo.AssertExpectations(t)
}

func TestOrderService_Transition_PagadoTwiceSettlesOnce(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	order := pendingOrder(&userID)
	order.Status = model.StatusListo
	items := []model.LineItem{
		{ID: uuid.New(), OrderID: order.ID, ProductID: "CAF-002", Quantity: 2, UnitPriceCents: 4500, SubtotalCents: 9000},
	}

	mockOrderRepo := new(MockOrderRepository)
	mockProfileRepo := new(MockProfileRepository)
	mockTx := new(MockTx)

	service := newTestOrderService(mockOrderRepo, mockProfileRepo)

	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("GetByCodeForUpdate", ctx, mockTx, order.Code).Return(order, nil)
	mockOrderRepo.On("GetItems", ctx, mockTx, order.ID).Return(items, nil)
	mockProfileRepo.On("Credit", ctx, mockTx, userID, mock.AnythingOfType("int")).Return(nil).Once()
	mockOrderRepo.On("UpdateStatus", ctx, mockTx, order.ID, model.StatusPagado, mock.AnythingOfType("int"), 1).Return(nil).Once()
	mockTx.On("Commit", ctx).Return(nil)

	// First pay settles.
	resp, err := service.Transition(ctx, order.Code, model.StatusPagado)
	require.NoError(t, err)
	awarded := resp.Order.PointsAwarded
	assert.Greater(t, awarded, 0)

	// A retried pay is a no-op: no second credit, no status write.
	resp, err = service.Transition(ctx, order.Code, model.StatusPagado)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPagado, resp.Order.Status)
	assert.Equal(t, awarded, resp.Order.PointsAwarded)

	mockProfileRepo.AssertNumberOfCalls(t, "Credit", 1)
	mockOrderRepo.AssertNumberOfCalls(t, "UpdateStatus", 1)
}

func TestOrderService_Transition_AnonymousEarnsNothing(t *testing.T) {
	ctx := context.Background()
	order := pendingOrder(nil)
	order.Status = model.StatusListo
	items := []model.LineItem{
		{ID: uuid.New(), OrderID: order.ID, ProductID: "CAF-001", Quantity: 1, UnitPriceCents: 250, SubtotalCents: 250},
	}

	mockOrderRepo := new(MockOrderRepository)
	mockProfileRepo := new(MockProfileRepository)
	mockTx := new(MockTx)

	service := newTestOrderService(mockOrderRepo, mockProfileRepo)

	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("GetByCodeForUpdate", ctx, mockTx, order.Code).Return(order, nil)
	mockOrderRepo.On("GetItems", ctx, mockTx, order.ID).Return(items, nil)
	mockOrderRepo.On("UpdateStatus", ctx, mockTx, order.ID, model.StatusPagado, 0, 1).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	resp, err := service.Transition(ctx, order.Code, model.StatusPagado)

	require.NoError(t, err)
	assert.Equal(t, 0, resp.Order.PointsAwarded)
	mockProfileRepo.AssertNotCalled(t, "Credit")
}

func TestOrderService_Transition_MissingProductStillSettlesBase(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	order := pendingOrder(&userID)
	order.Status = model.StatusListo

	// The product was removed from the catalog after checkout; the line
	// contributes no bonus but the base accrual still lands.
	items := []model.LineItem{
		{ID: uuid.New(), OrderID: order.ID, ProductID: "GONE-001", Quantity: 2, UnitPriceCents: 4500, SubtotalCents: 9000},
	}

	mockOrderRepo := new(MockOrderRepository)
	mockProfileRepo := new(MockProfileRepository)
	mockTx := new(MockTx)

	service := newTestOrderService(mockOrderRepo, mockProfileRepo)

	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("GetByCodeForUpdate", ctx, mockTx, order.Code).Return(order, nil)
	mockOrderRepo.On("GetItems", ctx, mockTx, order.ID).Return(items, nil)
	mockProfileRepo.On("Credit", ctx, mockTx, userID, 15).Return(nil)
	mockOrderRepo.On("UpdateStatus", ctx, mockTx, order.ID, model.StatusPagado, 15, 1).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	resp, err := service.Transition(ctx, order.Code, model.StatusPagado)

	require.NoError(t, err)
	assert.Equal(t, 15, resp.Order.PointsAwarded)
	mockProfileRepo.AssertExpectations(t)
}

func TestOrderService_Transition_RetriesExhausted(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	order := pendingOrder(&userID)
	items := []model.LineItem{
		{ID: uuid.New(), OrderID: order.ID, ProductID: "CAF-001", Quantity: 1, UnitPriceCents: 250, SubtotalCents: 250},
	}

	mockOrderRepo := new(MockOrderRepository)
	mockProfileRepo := new(MockProfileRepository)
	mockTx := new(MockTx)

	service := newTestOrderService(mockOrderRepo, mockProfileRepo)

	// Every attempt loses the version race.
	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("GetByCodeForUpdate", ctx, mockTx, order.Code).Return(order, nil)
	mockOrderRepo.On("GetItems", ctx, mockTx, order.ID).Return(items, nil)
	mockOrderRepo.On("UpdateStatus", ctx, mockTx, order.ID, model.StatusPreparando, 0, 1).
		Return(model.ErrConcurrentModification)
	mockTx.On("Rollback", ctx).Return(nil)

	resp, err := service.Transition(ctx, order.Code, model.StatusPreparando)

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConcurrentModification)
	assert.Nil(t, resp)
	mockOrderRepo.AssertNumberOfCalls(t, "UpdateStatus", maxTxAttempts)
}
