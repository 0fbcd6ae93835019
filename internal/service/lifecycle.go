package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cafe-kiosk/internal/model"
	"cafe-kiosk/internal/repository"
)

const (
	maxTxAttempts = 3
	retryBackoff  = 25 * time.Millisecond
)

// Transition applies a staff status change to an order. Serialization
// conflicts are retried in a fresh transaction; after the attempts are
// exhausted the caller gets ConcurrentModification and retries the whole
// operation.
func (s *orderService) Transition(ctx context.Context, code string, target model.Status) (*model.OrderResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		resp, err := s.transitionOnce(ctx, code, target)
		if err == nil || !isRetryable(err) {
			return resp, err
		}

		lastErr = err
		s.logger.Warn().
			Err(err).
			Str("code", code).
			Str("target", string(target)).
			Int("attempt", attempt).
			Msg("transition conflicted, retrying")
		time.Sleep(retryBackoff * time.Duration(attempt))
	}

	s.logger.Error().
		Err(lastErr).
		Str("code", code).
		Str("target", string(target)).
		Msg("transition failed after retries")
	return nil, model.ErrConcurrentModification
}

func isRetryable(err error) bool {
	return repository.IsRetryableTxError(err) || errors.Is(err, model.ErrConcurrentModification)
}

// transitionOnce runs a single transactional transition attempt. The order
// row is locked for the whole transaction so two concurrent transitions of
// the same order serialize, and settlement runs at most once.
func (s *orderService) transitionOnce(ctx context.Context, code string, target model.Status) (*model.OrderResponse, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to transition order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetByCodeForUpdate(ctx, tx, code)
	if err != nil {
		return nil, err
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	from := order.Status

	// A repeated "mark paid" on an already paid order is a no-op retry; it
	// must not settle again.
	if from == model.StatusPagado && target == model.StatusPagado {
		items, itemsErr := s.orderRepo.GetItems(ctx, tx, order.ID)
		if itemsErr != nil {
			err = itemsErr
			return nil, err
		}
		if err = tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to transition order: %w", err)
		}
		s.logger.Debug().Str("code", code).Msg("order already pagado, no-op")
		return &model.OrderResponse{Order: order, Items: items}, nil
	}

	if !model.CanTransition(from, target) {
		s.logger.Warn().
			Str("code", code).
			Str("from", string(from)).
			Str("to", string(target)).
			Msg("invalid transition requested")
		err = model.ErrInvalidTransition
		return nil, err
	}

	items, err := s.orderRepo.GetItems(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}

	awarded := order.PointsAwarded
	if target == model.StatusPagado {
		if order.UserID == nil {
			s.logger.Debug().Str("code", code).Msg("anonymous order, no points awarded")
		} else {
			points := s.settlementPoints(ctx, order, items)
			if err = s.profileRepo.Credit(ctx, tx, *order.UserID, points); err != nil {
				return nil, err
			}
			awarded = points
		}
	}

	if err = s.orderRepo.UpdateStatus(ctx, tx, order.ID, target, awarded, order.Version); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("code", code).Msg("failed to commit transition")
		return nil, fmt.Errorf("failed to transition order: %w", err)
	}

	order.Status = target
	order.PointsAwarded = awarded
	order.Version++
	order.UpdatedAt = time.Now()

	s.publisher.OrderStatusChanged(order, from)
	s.logger.Info().
		Str("code", code).
		Str("from", string(from)).
		Str("to", string(target)).
		Int("points_awarded", awarded).
		Msg("order transitioned")

	return &model.OrderResponse{Order: order, Items: items}, nil
}
