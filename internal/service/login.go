package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alimikegami/healthcare-microservices/users-service/internal/domain"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/dto"
	"github.com/alimikegami/healthcare-microservices/users-service/pkg/errs"
	"github.com/alimikegami/healthcare-microservices/users-service/pkg/utils"
	"github.com/rs/zerolog/log"
)

// Login checks a base64 "username:password" credential. Every denial returns
// errs.ErrLoginFailed so callers cannot tell the guards apart; the reason is
// only recorded in the audit trail.
func (s *ServiceImpl) Login(ctx context.Context, credential string) (resp dto.LoginResponse, err error) {
	username, password, err := utils.DecodeCredential(credential)
	if err != nil {
		loginAttempts.WithLabelValues(outcomeMalformed).Inc()
		return resp, err
	}
	if username == "" || password == "" {
		loginAttempts.WithLabelValues(outcomeMalformed).Inc()
		return resp, errs.ErrLoginFailed
	}

	clinician, found, err := s.findByUsername(ctx, username)
	if err != nil {
		return
	}

	if err = s.validateLogin(ctx, clinician, found, username, password); err != nil {
		return
	}

	permissions, err := s.catalog.PermissionsFor(clinician.Groups)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "Login").Strs("groups", clinician.Groups).Msg("")
		return resp, err
	}
	log.Ctx(ctx).Debug().Strs("groups", clinician.Groups).Int("permissions", len(permissions)).Msg("adding permissions for groups")

	return dto.NewLoginResponse(clinician, permissions), nil
}

// findByUsername treats more than one match as no match.
func (s *ServiceImpl) findByUsername(ctx context.Context, username string) (domain.Clinician, bool, error) {
	clinicians, err := s.repo.GetCliniciansByUsername(ctx, username)
	if err != nil {
		return domain.Clinician{}, false, err
	}

	switch len(clinicians) {
	case 0:
		log.Ctx(ctx).Error().Str("username", username).Msg("clinician not found for username")
		return domain.Clinician{}, false, nil
	case 1:
		return clinicians[0], true, nil
	default:
		log.Ctx(ctx).Error().Str("username", username).Int("matches", len(clinicians)).Msg("multiple clinicians found for username")
		return domain.Clinician{}, false, nil
	}
}

func (s *ServiceImpl) validateLogin(ctx context.Context, clinician domain.Clinician, found bool, username string, password string) error {
	if !found {
		loginAttempts.WithLabelValues(outcomeInvalidUsername).Inc()
		s.recordLoginFailure(ctx, "", reasonInvalidUsername, map[string]interface{}{"username": username})
		return errs.ErrLoginFailed
	}

	if !clinician.LoginActive {
		loginAttempts.WithLabelValues(outcomeDisabled).Inc()
		s.recordLoginFailure(ctx, clinician.UUID, reasonAccountDisabled, map[string]interface{}{"clinician_id": clinician.UUID})
		return errs.ErrLoginFailed
	}

	now := s.now()
	if clinician.IsExpired(now) {
		loginAttempts.WithLabelValues(outcomeExpired).Inc()
		if err := s.deactivate(ctx, clinician); err != nil {
			return err
		}
		s.recordLoginFailure(ctx, clinician.UUID, reasonLoginExpired, map[string]interface{}{
			"contract_expiry_eod_date": utils.FormatDate(*clinician.ContractExpiryEODDate),
			"clinician_id":             clinician.UUID,
		})
		return errs.ErrLoginFailed
	}

	if !clinician.VerifyPassword(password) {
		loginAttempts.WithLabelValues(outcomeInvalidPassword).Inc()
		s.recordLoginFailure(ctx, clinician.UUID, reasonInvalidPassword, map[string]interface{}{"clinician_id": clinician.UUID})
		return errs.ErrLoginFailed
	}

	loginAttempts.WithLabelValues(outcomeSuccess).Inc()
	s.recordAudit(ctx, clinician.UUID, AuditLoginSuccess, map[string]interface{}{"clinician_id": clinician.UUID})
	return nil
}

// deactivate persists login_active=false and announces the change.
func (s *ServiceImpl) deactivate(ctx context.Context, clinician domain.Clinician) error {
	log.Ctx(ctx).Debug().Str("clinician_id", clinician.UUID).Msg("deactivating clinician")

	clinician.LoginActive = false
	clinician.Modified = s.now()
	ensureArrays(&clinician)

	if err := s.repo.UpdateClinician(ctx, clinician); err != nil {
		return err
	}

	s.publishUpdated(ctx, clinician)
	return nil
}

// DeactivateExpiredClinicians switches off every active temporary account
// whose contract ended before today.
func (s *ServiceImpl) DeactivateExpiredClinicians(ctx context.Context) (deactivated int, err error) {
	today := utils.DateOnly(s.now())

	clinicians, err := s.repo.GetExpiredActiveClinicians(ctx, today)
	if err != nil {
		return 0, err
	}

	var failed []string
	for _, c := range clinicians {
		if err := s.deactivate(ctx, c); err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				continue
			}
			log.Error().Err(err).Str("component", "DeactivateExpiredClinicians").Str("clinician_id", c.UUID).Msg("")
			failed = append(failed, c.UUID)
			continue
		}
		deactivated++
		clinicianDeactivations.Inc()
	}

	if len(failed) > 0 {
		return deactivated, fmt.Errorf("%w: could not deactivate %s", errs.ErrInternalServer, strings.Join(failed, ", "))
	}

	log.Info().Int("deactivated", deactivated).Msg("expired clinician sweep complete")
	return deactivated, nil
}
