package repository

import (
	"context"
	"errors"
	"fmt"

	"cafe-kiosk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// profileRepository implements the ProfileRepository interface using PostgreSQL.
type profileRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProfileRepository creates a new PostgreSQL-backed profile repository.
func NewProfileRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProfileRepository {
	return &profileRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "profile").Logger(),
	}
}

// Get retrieves a profile by user id.
func (r *profileRepository) Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	query := `SELECT user_id, points, updated_at FROM profiles WHERE user_id = $1`

	var p model.Profile
	err := r.pool.QueryRow(ctx, query, userID).Scan(&p.UserID, &p.Points, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("user_id", userID.String()).Msg("profile not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query profile")
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	return &p, nil
}

// Debit subtracts points within the transaction. The WHERE guard makes the
// read-modify-write atomic: a concurrent debit that would drive the balance
// negative simply matches no row.
func (r *profileRepository) Debit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, points int) error {
	if points <= 0 {
		return nil
	}

	query := `
		UPDATE profiles
		SET points = points - $2, updated_at = NOW()
		WHERE user_id = $1 AND points >= $2
	`

	ct, err := tx.Exec(ctx, query, userID, points)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Int("points", points).
			Msg("failed to debit points")
		return fmt.Errorf("failed to debit points: %w", err)
	}

	if ct.RowsAffected() != 1 {
		r.logger.Warn().
			Str("user_id", userID.String()).
			Int("points", points).
			Msg("debit rejected, balance too low")
		return model.ErrInsufficientBalance
	}

	return nil
}

// Credit adds points within the transaction, creating the profile row if needed.
func (r *profileRepository) Credit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, points int) error {
	if points <= 0 {
		return nil
	}

	query := `
		INSERT INTO profiles (user_id, points, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET points = profiles.points + EXCLUDED.points, updated_at = NOW()
	`

	if _, err := tx.Exec(ctx, query, userID, points); err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Int("points", points).
			Msg("failed to credit points")
		return fmt.Errorf("failed to credit points: %w", err)
	}

	r.logger.Debug().
		Str("user_id", userID.String()).
		Int("points", points).
		Msg("points credited")

	return nil
}
