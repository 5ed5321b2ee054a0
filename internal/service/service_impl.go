package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/alimikegami/healthcare-microservices/users-service/config"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/domain"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/dto"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/permission"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/repository"
	pkgdto "github.com/alimikegami/healthcare-microservices/users-service/pkg/dto"
	"github.com/alimikegami/healthcare-microservices/users-service/pkg/errs"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var emailPattern = regexp.MustCompile(`[^@]+@[^@]+\.[^@]+`)

type ServiceImpl struct {
	repo      repository.ClinicianRepository
	config    config.Config
	catalog   permission.Catalog
	groups    GroupSynchronizer
	publisher EventPublisher
	now       func() time.Time
}

func CreateNewService(repo repository.ClinicianRepository, config config.Config, catalog permission.Catalog, groups GroupSynchronizer, publisher EventPublisher) ClinicianService {
	return &ServiceImpl{
		repo:      repo,
		config:    config,
		catalog:   catalog,
		groups:    groups,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *ServiceImpl) CreateClinician(ctx context.Context, principal domain.Principal, req dto.ClinicianCreateRequest, sendWelcomeEmail bool) (resp dto.ClinicianResponse, err error) {
	if err = req.Validate(); err != nil {
		return
	}
	if err = ensureKnownGroups(s.catalog, req.Groups); err != nil {
		return
	}

	now := s.now()
	clinician, err := newClinician(req, uuid.NewString(), principal.ActorID(), now)
	if err != nil {
		return
	}

	if clinician.CanEditEWS {
		err = ensureCanGrantEWS(ctx, s.repo, principal, "", clinician.Groups, clinician.ContractExpiryEODDate)
		if err != nil {
			return
		}
	}

	// a generated badge can still collide with a concurrent insert
	for attempt := 1; ; attempt++ {
		var generated bool
		err = s.repo.HandleTrx(ctx, func(ctx context.Context, repo repository.ClinicianRepository) error {
			var err error
			generated, err = applySendCreationRules(ctx, repo, principal, &clinician)
			if err != nil {
				return err
			}
			return repo.AddClinician(ctx, clinician)
		})

		if err == nil {
			break
		}
		if !generated || !errors.Is(err, errs.ErrDuplicateBadgeIdentifier) || attempt >= maxBadgeAttempts {
			if errors.Is(err, errs.ErrDuplicateResource) && !errors.Is(err, errs.ErrDuplicateBadgeIdentifier) {
				err = fmt.Errorf("%w: attempted to create user with existing email address", errs.ErrDuplicateResource)
			}
			return
		}

		log.Ctx(ctx).Warn().Int("attempt", attempt).Msg("generated badge number collided, retrying")
		clinician.SendEntryIdentifier = nil
	}

	if err = s.groups.AddToGroups(ctx, clinician.UUID, []string(clinician.Groups)); err != nil {
		return
	}

	s.publishCreated(ctx, clinician)
	if sendWelcomeEmail {
		s.publishWelcomeEmail(ctx, clinician)
	}

	return dto.NewClinicianResponse(clinician), nil
}

func (s *ServiceImpl) CreateCliniciansBulk(ctx context.Context, principal domain.Principal, reqs []dto.BulkClinicianRequest) (resp dto.BulkCreateResponse, err error) {
	now := s.now()
	actor := principal.ActorID()

	clinicians := make([]domain.Clinician, 0, len(reqs))
	for _, req := range reqs {
		if req.UUID == "" {
			return resp, fmt.Errorf("%w: uuid is required for bulk creation", errs.ErrValidation)
		}
		if err = req.Validate(); err != nil {
			return resp, err
		}

		clinician, err := newClinician(req.ClinicianCreateRequest, req.UUID, actor, now)
		if err != nil {
			return resp, err
		}

		if req.PasswordSalt != nil || req.PasswordHash != nil {
			if err = clinician.SetPasswordHash(deref(req.PasswordSalt), deref(req.PasswordHash)); err != nil {
				return resp, err
			}
		}

		for _, tr := range req.TermsAgreements {
			if err = tr.Validate(); err != nil {
				return resp, err
			}
			clinician.TermsAgreements = append(clinician.TermsAgreements, newTermsAgreement(tr, req.UUID, actor, now))
		}

		clinicians = append(clinicians, clinician)
	}

	log.Ctx(ctx).Info().Int("count", len(clinicians)).Msg("adding clinicians in bulk")

	err = s.repo.HandleTrx(ctx, func(ctx context.Context, repo repository.ClinicianRepository) error {
		for _, c := range clinicians {
			log.Ctx(ctx).Debug().Str("uuid", c.UUID).Msg("adding clinician")
			if err := repo.AddClinician(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return
	}

	return dto.BulkCreateResponse{Created: len(clinicians)}, nil
}

func (s *ServiceImpl) GetClinicianByID(ctx context.Context, id string, tempOnly bool) (resp dto.ClinicianResponse, err error) {
	clinician, err := s.repo.GetClinicianByID(ctx, id)
	if err != nil {
		return
	}

	if tempOnly && !clinician.IsTemporary() {
		return resp, fmt.Errorf("%w: insufficient privileges to access clinician", errs.ErrUnauthorized)
	}

	return dto.NewClinicianResponse(clinician), nil
}

func (s *ServiceImpl) GetClinicianByEmail(ctx context.Context, email string) (resp dto.ClinicianResponse, err error) {
	clinician, err := s.findByEmail(ctx, s.repo, email)
	if err != nil {
		return
	}
	return dto.NewClinicianResponse(clinician), nil
}

func (s *ServiceImpl) findByEmail(ctx context.Context, repo repository.ClinicianRepository, email string) (domain.Clinician, error) {
	if !emailPattern.MatchString(email) {
		return domain.Clinician{}, fmt.Errorf("%w: email %s is not valid", errs.ErrValidation, email)
	}

	folded := normaliseEmail(&email)
	clinicians, err := repo.GetCliniciansByEmail(ctx, *folded)
	if err != nil {
		return domain.Clinician{}, err
	}

	switch len(clinicians) {
	case 0:
		return domain.Clinician{}, fmt.Errorf("%w: no user found with address %s", errs.ErrNotFound, email)
	case 1:
		return clinicians[0], nil
	default:
		log.Ctx(ctx).Error().Int("matches", len(clinicians)).Msg("email address associated with multiple users")
		return domain.Clinician{}, fmt.Errorf("%w: email address associated with multiple users", errs.ErrNotFound)
	}
}

func (s *ServiceImpl) GetClinicians(ctx context.Context, filter pkgdto.Filter) (resp pkgdto.PaginationResponse, err error) {
	clinicians, err := s.repo.GetClinicians(ctx, filter)
	if err != nil {
		return
	}

	total, err := s.repo.CountClinicians(ctx, filter)
	if err != nil {
		return
	}

	if filter.Expanded {
		results := make([]dto.ClinicianResponse, 0, len(clinicians))
		for _, c := range clinicians {
			results = append(results, dto.NewClinicianResponse(c))
		}
		return pkgdto.PaginationResponse{Results: results, Total: total}, nil
	}

	results := make([]dto.ClinicianListItem, 0, len(clinicians))
	for _, c := range clinicians {
		results = append(results, dto.NewClinicianListItem(c, filter.Compact))
	}
	return pkgdto.PaginationResponse{Results: results, Total: total}, nil
}

// GetCliniciansByUUIDs maps every requested id to its clinician, or to nil
// when no such clinician exists.
func (s *ServiceImpl) GetCliniciansByUUIDs(ctx context.Context, uuids []string, compact bool) (resp map[string]interface{}, err error) {
	clinicians, err := s.repo.GetCliniciansByUUIDs(ctx, uuids)
	if err != nil {
		return
	}

	resp = make(map[string]interface{}, len(uuids))
	for _, id := range uuids {
		resp[id] = nil
	}
	for _, c := range clinicians {
		if compact {
			resp[c.UUID] = dto.NewClinicianCompactResponse(c)
		} else {
			resp[c.UUID] = dto.NewClinicianResponse(c)
		}
	}

	if missing := len(resp) - len(clinicians); missing > 0 {
		log.Ctx(ctx).Info().Int("missing", missing).Msg("could not retrieve some clinicians")
	}

	return resp, nil
}

func (s *ServiceImpl) GetCliniciansAtLocation(ctx context.Context, locationID string) (resp []dto.ClinicianResponse, err error) {
	clinicians, err := s.repo.GetCliniciansAtLocation(ctx, locationID)
	if err != nil {
		return
	}

	resp = make([]dto.ClinicianResponse, 0, len(clinicians))
	for _, c := range clinicians {
		resp = append(resp, dto.NewClinicianResponse(c))
	}
	return resp, nil
}

func (s *ServiceImpl) UpdateClinician(ctx context.Context, principal domain.Principal, id string, req dto.ClinicianUpdateRequest, editTempOnly bool) (resp dto.ClinicianResponse, err error) {
	if err = ensureNotChangingOwnGroups(principal, id, req.Groups != nil); err != nil {
		return
	}
	if err = ensureKnownGroups(s.catalog, req.Groups); err != nil {
		return
	}

	var clinician domain.Clinician
	var wasActive bool
	err = s.repo.HandleTrx(ctx, func(ctx context.Context, repo repository.ClinicianRepository) error {
		var err error
		clinician, err = repo.GetClinicianByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		wasActive = clinician.LoginActive

		changes, err := s.mergeUpdate(ctx, repo, principal, &clinician, req, editTempOnly)
		if err != nil {
			return err
		}

		if err := repo.UpdateClinician(ctx, clinician); err != nil {
			return err
		}
		return changes.persist(ctx, repo, clinician.UUID)
	})
	if err != nil {
		return
	}

	if clinician.LoginActive != wasActive {
		eventType := AuditLoginDeactivated
		if clinician.LoginActive {
			eventType = AuditLoginActivated
		}
		s.recordAudit(ctx, clinician.UUID, eventType, map[string]interface{}{
			"clinician_id": clinician.UUID,
			"modified_by":  clinician.ModifiedBy,
		})
	}

	if len(req.Groups) > 0 {
		if err = s.groups.AddToGroups(ctx, clinician.UUID, []string(req.Groups)); err != nil {
			return
		}
	}

	s.publishUpdated(ctx, clinician)

	return dto.NewClinicianResponse(clinician), nil
}

// mergeUpdate runs every precondition against the locked row and then applies
// the patch in memory. Nothing is written here.
func (s *ServiceImpl) mergeUpdate(ctx context.Context, repo repository.ClinicianRepository, principal domain.Principal, clinician *domain.Clinician, req dto.ClinicianUpdateRequest, editTempOnly bool) (productChanges, error) {
	clearsExpiry := req.ContractExpiryEODDate.Set && (req.ContractExpiryEODDate.Value == nil || *req.ContractExpiryEODDate.Value == "")

	if req.CanEditEWS.Set && req.CanEditEWS.Value != nil && *req.CanEditEWS.Value {
		expiry := clinician.ContractExpiryEODDate
		if req.ContractExpiryEODDate.Set {
			var err error
			expiry, err = parseOptionalDate("contract_expiry_eod_date", req.ContractExpiryEODDate.Value)
			if err != nil {
				return productChanges{}, err
			}
		}
		groups := append(append([]string{}, req.Groups...), clinician.Groups...)
		if err := ensureCanGrantEWS(ctx, repo, principal, clinician.UUID, groups, expiry); err != nil {
			return productChanges{}, err
		}
	}

	isPermanent := !clinician.IsTemporary() || clearsExpiry
	if err := checkTempEditScope(editTempOnly, isPermanent, req.FieldNames()); err != nil {
		return productChanges{}, err
	}
	if err := ensureCanMakePermanent(principal, *clinician, clearsExpiry); err != nil {
		return productChanges{}, err
	}

	changes, err := applyUpdate(clinician, req, principal.ActorID(), s.now())
	if err != nil {
		return changes, err
	}
	ensureArrays(clinician)

	return changes, nil
}

func (s *ServiceImpl) RemoveFromClinician(ctx context.Context, principal domain.Principal, id string, req dto.ClinicianRemoveRequest) (resp dto.ClinicianResponse, err error) {
	if err = ensureNotChangingOwnGroups(principal, id, req.Groups != nil); err != nil {
		return
	}

	var clinician domain.Clinician
	err = s.repo.HandleTrx(ctx, func(ctx context.Context, repo repository.ClinicianRepository) error {
		var err error
		clinician, err = repo.GetClinicianByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		changes := applyRemoval(&clinician, req, principal.ActorID(), s.now())
		ensureArrays(&clinician)

		if err := repo.UpdateClinician(ctx, clinician); err != nil {
			return err
		}
		return changes.persist(ctx, repo, clinician.UUID)
	})
	if err != nil {
		return
	}

	if len(req.Groups) > 0 {
		if err = s.groups.RemoveFromGroups(ctx, clinician.UUID, []string(req.Groups)); err != nil {
			return
		}
	}

	s.publishUpdated(ctx, clinician)

	return dto.NewClinicianResponse(clinician), nil
}

func (s *ServiceImpl) UpdatePasswordByEmail(ctx context.Context, principal domain.Principal, email string, password string) (resp dto.ClinicianResponse, err error) {
	if password == "" {
		return resp, fmt.Errorf("%w: password is required", errs.ErrValidation)
	}

	clinician, err := s.findByEmail(ctx, s.repo, email)
	if err != nil {
		return
	}

	if err = clinician.SetPassword(password); err != nil {
		log.Error().Err(err).Str("component", "UpdatePasswordByEmail").Msg("")
		return resp, errs.ErrInternalServer
	}
	clinician.Modified = s.now()
	clinician.ModifiedBy = principal.ActorID()
	ensureArrays(&clinician)

	if err = s.repo.UpdateClinician(ctx, clinician); err != nil {
		return
	}

	return dto.NewClinicianResponse(clinician), nil
}

func (s *ServiceImpl) CreateTermsAgreement(ctx context.Context, principal domain.Principal, id string, req dto.TermsAgreementRequest) (resp dto.TermsAgreementResponse, err error) {
	if err = req.Validate(); err != nil {
		return
	}

	if _, err = s.repo.GetClinicianByID(ctx, id); err != nil {
		return
	}

	ta := newTermsAgreement(req, id, principal.ActorID(), s.now())
	if err = s.repo.AddTermsAgreement(ctx, ta); err != nil {
		return
	}

	return dto.NewTermsAgreementResponse(ta), nil
}

func (s *ServiceImpl) AddLocationBookmark(ctx context.Context, principal domain.Principal, id string, locationID string) error {
	return s.updateBookmarks(ctx, principal, id, func(c *domain.Clinician) {
		c.Bookmarks = domain.SortedUnion(c.Bookmarks, []string{locationID})
	})
}

func (s *ServiceImpl) RemoveLocationBookmark(ctx context.Context, principal domain.Principal, id string, locationID string) error {
	return s.updateBookmarks(ctx, principal, id, func(c *domain.Clinician) {
		c.Bookmarks = domain.Difference(c.Bookmarks, []string{locationID})
	})
}

func (s *ServiceImpl) AddPatientBookmark(ctx context.Context, principal domain.Principal, id string, patientID string) error {
	return s.updateBookmarks(ctx, principal, id, func(c *domain.Clinician) {
		c.BookmarkedPatients = domain.SortedUnion(c.BookmarkedPatients, []string{patientID})
	})
}

func (s *ServiceImpl) RemovePatientBookmark(ctx context.Context, principal domain.Principal, id string, patientID string) error {
	return s.updateBookmarks(ctx, principal, id, func(c *domain.Clinician) {
		c.BookmarkedPatients = domain.Difference(c.BookmarkedPatients, []string{patientID})
	})
}

func (s *ServiceImpl) updateBookmarks(ctx context.Context, principal domain.Principal, id string, mutate func(c *domain.Clinician)) error {
	return s.repo.HandleTrx(ctx, func(ctx context.Context, repo repository.ClinicianRepository) error {
		clinician, err := repo.GetClinicianByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		mutate(&clinician)
		clinician.Modified = s.now()
		clinician.ModifiedBy = principal.ActorID()
		ensureArrays(&clinician)

		return repo.UpdateClinician(ctx, clinician)
	})
}

func (s *ServiceImpl) GetRoles(ctx context.Context) map[string][]string {
	return s.catalog.RoleMap()
}

func newTermsAgreement(req dto.TermsAgreementRequest, userID string, actor string, now time.Time) domain.TermsAgreement {
	ta := domain.TermsAgreement{
		UUID:                           uuid.NewString(),
		Created:                        now,
		CreatedBy:                      actor,
		Modified:                       now,
		ModifiedBy:                     actor,
		UserID:                         userID,
		ProductName:                    req.ProductName,
		Version:                        req.Version,
		AcceptedTimestamp:              req.AcceptedTimestamp,
		TouVersion:                     req.TouVersion,
		TouAcceptedTimestamp:           req.TouAcceptedTimestamp,
		PatientNoticeVersion:           req.PatientNoticeVersion,
		PatientNoticeAcceptedTimestamp: req.PatientNoticeAcceptedTimestamp,
	}
	ta.StampDefaults(now)
	return ta
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
