package service

import (
	"context"
	"fmt"

	"cafe-kiosk/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// profileService implements ProfileService.
type profileService struct {
	profileRepo repository.ProfileRepository
	logger      zerolog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(profileRepo repository.ProfileRepository, logger zerolog.Logger) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		logger:      logger.With().Str("service", "profile").Logger(),
	}
}

// Points returns the current point balance for a user.
func (s *profileService) Points(ctx context.Context, userID uuid.UUID) (int, error) {
	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get profile")
		return 0, fmt.Errorf("failed to get profile: %w", err)
	}

	if profile == nil {
		return 0, nil
	}

	return profile.Points, nil
}
