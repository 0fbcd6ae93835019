package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cafe-kiosk/internal/catalog"
	"cafe-kiosk/internal/events"
	"cafe-kiosk/internal/model"
	"cafe-kiosk/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxCodeAttempts bounds regeneration when an order code collides.
const maxCodeAttempts = 5

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	profileRepo repository.ProfileRepository
	catalog     catalog.Gateway
	pricer      *Pricer
	publisher   events.Publisher
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	profileRepo repository.ProfileRepository,
	gateway catalog.Gateway,
	publisher events.Publisher,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		profileRepo: profileRepo,
		catalog:     gateway,
		pricer:      NewPricer(gateway, logger),
		publisher:   publisher,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// Checkout prices the cart, applies redemption and creates the order.
// The ledger debit, the order insert and the line items all share one
// transaction; a failure anywhere rolls everything back.
func (s *orderService) Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.OrderResponse, error) {
	if err := validateCheckoutRequest(req); err != nil {
		return nil, err
	}

	cart, err := s.pricer.PriceCart(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	totalCents := cart.SubtotalCents
	redeemed := 0
	if req.UserID != nil && req.RequestedPoints > 0 {
		profile, err := s.profileRepo.Get(ctx, *req.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to read profile: %w", err)
		}
		balance := 0
		if profile != nil {
			balance = profile.Points
		}
		totalCents, redeemed = ApplyRedemption(cart.SubtotalCents, balance, req.RequestedPoints)
	}

	status := model.StatusPendiente
	if totalCents == 0 {
		status = model.StatusPagado
	}

	now := time.Now()
	order := &model.Order{
		ID:             uuid.New(),
		UserID:         req.UserID,
		BranchID:       req.BranchID,
		Status:         status,
		TotalCents:     totalCents,
		PointsRedeemed: redeemed,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	items := cart.Items
	for i := range items {
		items[i].OrderID = order.ID
	}

	// A fully point-funded order is born pagado and would otherwise never
	// pass through a paying transition, so it settles right here.
	awarded := 0
	if status == model.StatusPagado && req.UserID != nil {
		awarded = s.settlementPoints(ctx, order, items)
		order.PointsAwarded = awarded
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := newOrderCode()
		if err != nil {
			return nil, err
		}
		order.Code = code

		err = s.createOrderTx(ctx, order, items, redeemed, awarded)
		if errors.Is(err, repository.ErrDuplicateCode) {
			s.logger.Warn().
				Str("code", code).
				Int("attempt", attempt).
				Msg("order code collision, regenerating")
			continue
		}
		if err != nil {
			return nil, err
		}

		s.publisher.OrderCreated(order, items)
		s.logger.Info().
			Str("order_id", order.ID.String()).
			Str("code", order.Code).
			Str("status", string(order.Status)).
			Int64("total_cents", order.TotalCents).
			Int("points_redeemed", redeemed).
			Int("points_awarded", awarded).
			Msg("order created")

		return &model.OrderResponse{Order: order, Items: items}, nil
	}

	return nil, fmt.Errorf("failed to allocate a unique order code after %d attempts", maxCodeAttempts)
}

// createOrderTx runs the transactional part of checkout: debit, order
// insert, line items and, for orders born pagado, the settlement credit.
func (s *orderService) createOrderTx(ctx context.Context, order *model.Order, items []model.LineItem, redeemed, awarded int) error {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if redeemed > 0 {
		// The guarded update re-checks the balance; a concurrent checkout
		// that spent the same points surfaces here as InsufficientBalance.
		if err = s.profileRepo.Debit(ctx, tx, *order.UserID, redeemed); err != nil {
			return err
		}
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order, items); err != nil {
		return err
	}

	if awarded > 0 {
		if err = s.profileRepo.Credit(ctx, tx, *order.UserID, awarded); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// GetByCode retrieves an order and its items by the human-readable code.
func (s *orderService) GetByCode(ctx context.Context, code string) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByCode(ctx, code)
	if err != nil {
		s.logger.Error().Err(err).Str("code", code).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("code", code).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return &model.OrderResponse{Order: order, Items: items}, nil
}

// defaultBoardLimit caps the register board when the caller does not ask
// for a specific page size.
const defaultBoardLimit = 50

// ListActive retrieves orders still moving through the lifecycle.
func (s *orderService) ListActive(ctx context.Context, limit int) ([]model.Order, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultBoardLimit
	}

	orders, err := s.orderRepo.ListActive(ctx, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list active orders")
		return nil, fmt.Errorf("failed to list active orders: %w", err)
	}

	return orders, nil
}

// validateCheckoutRequest validates the checkout request shape; product and
// quantity rules live in the pricer.
func validateCheckoutRequest(req *model.CheckoutRequest) error {
	if req == nil {
		return fmt.Errorf("checkout request is nil")
	}

	if req.BranchID == uuid.Nil {
		return fmt.Errorf("branch is required")
	}

	if len(req.Items) == 0 {
		return fmt.Errorf("order must contain at least one item")
	}

	for i, item := range req.Items {
		if item.ProductID == "" {
			return fmt.Errorf("item %d: product ID is required", i)
		}
	}

	return nil
}
