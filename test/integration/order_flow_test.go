package integration

import (
	"context"
	"testing"

	"cafe-kiosk/internal/catalog"
	"cafe-kiosk/internal/events"
	"cafe-kiosk/internal/model"
	"cafe-kiosk/internal/repository"
	"cafe-kiosk/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderService(pool *pgxpool.Pool) (service.OrderService, service.ProfileService) {
	logger := zerolog.Nop()
	orderRepo := repository.NewOrderRepository(pool, logger)
	profileRepo := repository.NewProfileRepository(pool, logger)

	gateway := catalog.NewStaticGateway(
		model.Product{ID: "CAF-001", Name: "Espresso", PriceCents: 250, BonusPoints: 1, Active: true},
		model.Product{ID: "PAS-010", Name: "Tarta entera", PriceCents: 4500, BonusPoints: 3, Active: true},
	)

	return service.NewOrderService(orderRepo, profileRepo, gateway, events.NopPublisher{}, logger),
		service.NewProfileService(profileRepo, logger)
}

func seedProfile(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, points int) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO profiles (user_id, points) VALUES ($1, $2)`, userID, points)
	require.NoError(t, err)
}

func TestOrderLifecycle_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool := SetupTestDB(t)
	orders, profiles := newOrderService(pool)
	ctx := context.Background()

	userID := uuid.New()
	seedProfile(t, pool, userID, 40)

	// Checkout: two whole cakes at 45.00 each, redeeming 20 points.
	resp, err := orders.Checkout(ctx, &model.CheckoutRequest{
		UserID:          &userID,
		BranchID:        uuid.New(),
		RequestedPoints: 20,
		Items:           []model.LineRequest{{ProductID: "PAS-010", Quantity: 2}},
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	code := resp.Order.Code
	assert.Len(t, code, 8)
	assert.Equal(t, model.StatusPendiente, resp.Order.Status)
	assert.Equal(t, int64(8000), resp.Order.TotalCents) // 9000 - 20*50
	assert.Equal(t, 20, resp.Order.PointsRedeemed)

	// The redeemed points left the ledger at checkout.
	balance, err := profiles.Points(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 20, balance)

	// Walk the order to the register.
	for _, target := range []model.Status{model.StatusPreparando, model.StatusListo} {
		resp, err = orders.Transition(ctx, code, target)
		require.NoError(t, err)
		assert.Equal(t, target, resp.Order.Status)
	}

	// Paying settles: 8000/3000 bands * 5 + bonus 3*2 = 16 points.
	resp, err = orders.Transition(ctx, code, model.StatusPagado)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPagado, resp.Order.Status)
	assert.Equal(t, 16, resp.Order.PointsAwarded)

	balance, err = profiles.Points(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 36, balance)

	// A retried pay changes nothing and credits nothing.
	resp, err = orders.Transition(ctx, code, model.StatusPagado)
	require.NoError(t, err)
	assert.Equal(t, 16, resp.Order.PointsAwarded)

	balance, err = profiles.Points(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 36, balance)

	// Pickup closes the order.
	resp, err = orders.Transition(ctx, code, model.StatusRecogido)
	require.NoError(t, err)
	assert.True(t, resp.Order.Status.IsTerminal())

	// Nothing moves out of a terminal state.
	_, err = orders.Transition(ctx, code, model.StatusPreparando)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestOrderLifecycle_AnonymousAndCancel(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool := SetupTestDB(t)
	orders, _ := newOrderService(pool)
	ctx := context.Background()

	resp, err := orders.Checkout(ctx, &model.CheckoutRequest{
		BranchID:        uuid.New(),
		RequestedPoints: 50, // ignored without a user
		Items:           []model.LineRequest{{ProductID: "CAF-001", Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500), resp.Order.TotalCents)
	assert.Equal(t, 0, resp.Order.PointsRedeemed)

	fetched, err := orders.GetByCode(ctx, resp.Order.Code)
	require.NoError(t, err)
	assert.Equal(t, resp.Order.ID, fetched.Order.ID)
	assert.Len(t, fetched.Items, 1)

	cancelled, err := orders.Transition(ctx, resp.Order.Code, model.StatusCancelado)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelado, cancelled.Order.Status)
	assert.Equal(t, 0, cancelled.Order.PointsAwarded)
}

func TestOrderLifecycle_FullyPointFunded(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool := SetupTestDB(t)
	orders, profiles := newOrderService(pool)
	ctx := context.Background()

	userID := uuid.New()
	seedProfile(t, pool, userID, 15)

	// 2 espressos = 500 cents = 10 points; the full cover births the order
	// pagado and settles it in the same transaction (bonus 1 * 2 units).
	resp, err := orders.Checkout(ctx, &model.CheckoutRequest{
		UserID:          &userID,
		BranchID:        uuid.New(),
		RequestedPoints: 10,
		Items:           []model.LineRequest{{ProductID: "CAF-001", Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPagado, resp.Order.Status)
	assert.Equal(t, int64(0), resp.Order.TotalCents)
	assert.Equal(t, 2, resp.Order.PointsAwarded)

	balance, err := profiles.Points(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 7, balance) // 15 - 10 + 2
}
