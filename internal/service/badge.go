package service

import (
	"context"
	"fmt"

	"github.com/alimikegami/healthcare-microservices/users-service/internal/repository"
	"github.com/alimikegami/healthcare-microservices/users-service/pkg/errs"
	"github.com/alimikegami/healthcare-microservices/users-service/pkg/utils"
	"github.com/rs/zerolog/log"
)

// maxBadgeAttempts bounds both the lookup loop and the insert retries.
const maxBadgeAttempts = 10

var newBadgeIdentifier = utils.GenerateBadgeIdentifier

func generateBadgeIdentifier(ctx context.Context, repo repository.ClinicianRepository) (string, error) {
	for i := 0; i < maxBadgeAttempts; i++ {
		badge, err := newBadgeIdentifier()
		if err != nil {
			log.Error().Err(err).Str("component", "generateBadgeIdentifier").Msg("")
			return "", errs.ErrInternalServer
		}

		exists, err := repo.BadgeIdentifierExists(ctx, badge)
		if err != nil {
			return "", err
		}
		if !exists {
			return badge, nil
		}
	}

	return "", fmt.Errorf("%w: could not allocate a unique badge number", errs.ErrConflict)
}
