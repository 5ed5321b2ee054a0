package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alimikegami/healthcare-microservices/users-service/internal/domain"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/permission"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/repository"
	"github.com/alimikegami/healthcare-microservices/users-service/pkg/errs"
	"github.com/rs/zerolog/log"
)

// Fields a temp-only editor may never touch.
var tempRestrictedFields = []string{"groups", "password_salt", "password_hash"}

// ensureCanGrantEWS gates setting can_edit_ews on an account with the given
// groups and contract expiry. System principals are not checked.
func ensureCanGrantEWS(ctx context.Context, repo repository.ClinicianRepository, principal domain.Principal, targetID string, targetGroups []string, targetExpiry *time.Time) error {
	if principal.IsSystem() {
		return nil
	}

	if !permission.IsSendClinician(targetGroups) {
		return fmt.Errorf("%w: only SEND clinicians can allow EWS change permission", errs.ErrValidation)
	}

	if targetExpiry != nil {
		return fmt.Errorf("%w: temporary clinicians cannot allow EWS change permission", errs.ErrValidation)
	}

	actor, err := repo.GetClinicianByID(ctx, principal.UserID)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return err
	}
	if err != nil || !domain.Contains(actor.Groups, permission.RoleSendAdministrator) {
		log.Ctx(ctx).Warn().Str("actor", principal.ActorID()).Msg("non admin attempted to change can_edit_ews")
		return fmt.Errorf("%w: only admins are allowed to change 'can_edit_ews' on users", errs.ErrUnauthorized)
	}

	if targetID != "" && principal.IsUser(targetID) {
		return fmt.Errorf("%w: clinician is not allowed to change their own 'can_edit_ews'", errs.ErrUnauthorized)
	}

	return nil
}

func checkTempEditScope(editTempOnly bool, isTargetPermanent bool, updateFields []string) error {
	if !editTempOnly {
		return nil
	}

	if isTargetPermanent {
		return fmt.Errorf("%w: insufficient privileges to edit permanent user", errs.ErrUnauthorized)
	}

	for _, f := range updateFields {
		if domain.Contains(tempRestrictedFields, f) {
			return fmt.Errorf("%w: insufficient privileges to edit field %s", errs.ErrUnauthorized, f)
		}
	}

	return nil
}

// ensureNotChangingOwnGroups applies to both additive and subtractive patches.
func ensureNotChangingOwnGroups(principal domain.Principal, targetID string, touchesGroups bool) error {
	if touchesGroups && principal.IsUser(targetID) {
		return fmt.Errorf("%w: clinician is not allowed to change their own groups", errs.ErrUnauthorized)
	}
	return nil
}

// ensureCanMakePermanent guards clearing the contract expiry of a temporary account.
func ensureCanMakePermanent(principal domain.Principal, existing domain.Clinician, clearsExpiry bool) error {
	if clearsExpiry && existing.IsTemporary() && !principal.HasScope(permission.WriteSendClinicianAll) {
		return fmt.Errorf("%w: no authorisation to make user permanent", errs.ErrUnauthorized)
	}
	return nil
}

func ensureKnownGroups(catalog permission.Catalog, groups []string) error {
	for _, g := range groups {
		if !catalog.IsKnownRole(g) {
			return fmt.Errorf("%w: unknown group %q", errs.ErrValidation, g)
		}
	}
	return nil
}

// applySendCreationRules enforces the badge and scope requirements for new
// SEND enrolments. Temporary accounts get a generated badge when none is given.
func applySendCreationRules(ctx context.Context, repo repository.ClinicianRepository, principal domain.Principal, c *domain.Clinician) (generated bool, err error) {
	if !domain.Contains(c.ProductNames(), domain.ProductSEND) {
		return false, nil
	}

	hasBadge := c.SendEntryIdentifier != nil && *c.SendEntryIdentifier != ""

	if c.IsTemporary() {
		c.CanEditEWS = false
		if hasBadge {
			log.Ctx(ctx).Info().Str("badge", *c.SendEntryIdentifier).Msg("using existing badge number for new temp SEND clinician")
			return false, nil
		}

		badge, err := generateBadgeIdentifier(ctx, repo)
		if err != nil {
			return false, err
		}
		c.SendEntryIdentifier = &badge
		log.Ctx(ctx).Info().Str("badge", badge).Msg("generated badge number for new temp SEND clinician")
		return true, nil
	}

	if !principal.HasScope(permission.WriteSendClinicianAll) {
		return false, fmt.Errorf("%w: you do not have permission to create a permanent SEND user", errs.ErrUnauthorized)
	}
	if !hasBadge {
		return false, fmt.Errorf("%w: cannot create a permanent SEND user without a badge number", errs.ErrValidation)
	}

	return false, nil
}
