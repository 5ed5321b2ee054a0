package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alimikegami/healthcare-microservices/users-service/internal/domain"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/dto"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/permission"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/repository"
	"github.com/alimikegami/healthcare-microservices/users-service/pkg/errs"
	"github.com/alimikegami/healthcare-microservices/users-service/pkg/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// productChanges collects the product rows a merge touched so they can be
// written in the same transaction as the clinician row.
type productChanges struct {
	added   []domain.Product
	updated []domain.Product
	removed []string
}

func (pc productChanges) persist(ctx context.Context, repo repository.ClinicianRepository, userID string) error {
	for _, p := range pc.updated {
		if err := repo.UpdateProduct(ctx, p); err != nil {
			return err
		}
	}
	for _, p := range pc.added {
		if err := repo.AddProduct(ctx, p); err != nil {
			return err
		}
	}
	if len(pc.removed) > 0 {
		if err := repo.DeleteProducts(ctx, userID, pc.removed); err != nil {
			return err
		}
	}
	return nil
}

func newClinician(req dto.ClinicianCreateRequest, id string, actor string, now time.Time) (domain.Clinician, error) {
	c := domain.Clinician{
		UUID:                           id,
		Created:                        now,
		CreatedBy:                      actor,
		Modified:                       now,
		ModifiedBy:                     actor,
		FirstName:                      strings.TrimSpace(req.FirstName),
		LastName:                       strings.TrimSpace(req.LastName),
		PhoneNumber:                    req.PhoneNumber,
		JobTitle:                       req.JobTitle,
		NHSSmartcardNumber:             stringPtr(req.NHSSmartcardNumber),
		EmailAddress:                   normaliseEmail(req.EmailAddress),
		SendEntryIdentifier:            emptyToNil(req.SendEntryIdentifier),
		ProfessionalRegistrationNumber: req.ProfessionalRegistrationNumber,
		AgencyName:                     req.AgencyName,
		AgencyStaffEmployeeNumber:      req.AgencyStaffEmployeeNumber,
		BookingReference:               req.BookingReference,
		AnalyticsConsent:               req.AnalyticsConsent,
		CanEditEncounter:               req.CanEditEncounter,
		LoginActive:                    true,
		Groups:                         pq.StringArray(domain.SortedUnion(nil, req.Groups)),
		Locations:                      pq.StringArray(domain.SortedUnion(nil, req.Locations)),
		Bookmarks:                      pq.StringArray(domain.SortedUnion(nil, req.Bookmarks)),
		BookmarkedPatients:             pq.StringArray(domain.SortedUnion(nil, req.BookmarkedPatients)),
		Products:                       []domain.Product{},
	}

	if req.LoginActive != nil {
		c.LoginActive = *req.LoginActive
	}
	if req.CanEditEWS != nil {
		c.CanEditEWS = *req.CanEditEWS
	}

	expiry, err := parseOptionalDate("contract_expiry_eod_date", req.ContractExpiryEODDate)
	if err != nil {
		return c, err
	}
	c.ContractExpiryEODDate = expiry

	for _, pr := range req.Products {
		p, err := newProduct(pr, id, actor, now)
		if err != nil {
			return c, err
		}
		if p.IsOpen() && c.HasOpenProduct(p.ProductName, "") {
			return c, fmt.Errorf("%w: product %s is already open for this clinician", errs.ErrConflict, p.ProductName)
		}
		c.Products = append(c.Products, p)
	}

	return c, nil
}

func newProduct(req dto.ProductRequest, userID string, actor string, now time.Time) (domain.Product, error) {
	if strings.TrimSpace(req.ProductName) == "" {
		return domain.Product{}, fmt.Errorf("%w: product_name is required", errs.ErrValidation)
	}
	if req.OpenedDate == nil {
		return domain.Product{}, fmt.Errorf("%w: opened_date is required", errs.ErrValidation)
	}

	opened, err := utils.ParseDate(*req.OpenedDate)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: invalid opened_date %q", errs.ErrValidation, *req.OpenedDate)
	}

	closed, err := parseOptionalDate("closed_date", req.ClosedDate)
	if err != nil {
		return domain.Product{}, err
	}

	id := uuid.NewString()
	if req.UUID != nil && *req.UUID != "" {
		id = *req.UUID
	}

	return domain.Product{
		UUID:              id,
		Created:           now,
		CreatedBy:         actor,
		Modified:          now,
		ModifiedBy:        actor,
		UserID:            userID,
		ProductName:       req.ProductName,
		OpenedDate:        opened,
		ClosedDate:        closed,
		ClosedReason:      req.ClosedReason,
		ClosedReasonOther: req.ClosedReasonOther,
	}, nil
}

// mergeProducts upserts products on c. Entries with a UUID update the matching
// product; the others are appended as new enrolments.
func mergeProducts(c *domain.Clinician, reqs []dto.ProductRequest, actor string, now time.Time) (changes productChanges, err error) {
	for _, req := range reqs {
		if req.UUID != nil && *req.UUID != "" {
			updated, err := updateProduct(c, *req.UUID, req, actor, now)
			if err != nil {
				return changes, err
			}
			changes.updated = append(changes.updated, updated)
			continue
		}

		if req.ClosedDate == nil && c.HasOpenProduct(req.ProductName, "") {
			return changes, fmt.Errorf("%w: cannot add duplicate open product %s", errs.ErrConflict, req.ProductName)
		}

		p, err := newProduct(req, c.UUID, actor, now)
		if err != nil {
			return changes, err
		}
		c.Products = append(c.Products, p)
		changes.added = append(changes.added, p)
	}

	return changes, nil
}

func updateProduct(c *domain.Clinician, productID string, req dto.ProductRequest, actor string, now time.Time) (domain.Product, error) {
	p, ok := c.FindProduct(productID)
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: no product found with UUID %s", errs.ErrNotFound, productID)
	}

	if req.ProductName != "" && req.ProductName != p.ProductName {
		if c.HasOpenProduct(req.ProductName, p.UUID) {
			return domain.Product{}, fmt.Errorf("%w: user is already active on %s", errs.ErrConflict, req.ProductName)
		}
		p.ProductName = req.ProductName
	}

	if req.OpenedDate != nil {
		opened, err := utils.ParseDate(*req.OpenedDate)
		if err != nil {
			return domain.Product{}, fmt.Errorf("%w: invalid opened_date %q", errs.ErrValidation, *req.OpenedDate)
		}
		p.OpenedDate = opened
	}

	if req.ClosedDate != nil {
		closed, err := parseOptionalDate("closed_date", req.ClosedDate)
		if err != nil {
			return domain.Product{}, err
		}
		p.ClosedDate = closed
	}
	if req.ClosedReason != nil {
		p.ClosedReason = req.ClosedReason
	}
	if req.ClosedReasonOther != nil {
		p.ClosedReasonOther = req.ClosedReasonOther
	}

	p.Modified = now
	p.ModifiedBy = actor

	return *p, nil
}

// applyUpdate merges an additive patch into c. Scalars are overwritten, list
// fields become the sorted union of old and new values.
func applyUpdate(c *domain.Clinician, req dto.ClinicianUpdateRequest, actor string, now time.Time) (productChanges, error) {
	if req.FirstName.Set && req.FirstName.Value != nil {
		c.FirstName = strings.TrimSpace(*req.FirstName.Value)
	}
	if req.LastName.Set && req.LastName.Value != nil {
		c.LastName = strings.TrimSpace(*req.LastName.Value)
	}
	if req.PhoneNumber.Set && req.PhoneNumber.Value != nil {
		c.PhoneNumber = *req.PhoneNumber.Value
	}
	if req.JobTitle.Set && req.JobTitle.Value != nil {
		c.JobTitle = *req.JobTitle.Value
	}
	if req.LoginActive.Set && req.LoginActive.Value != nil {
		c.LoginActive = *req.LoginActive.Value
	}
	if req.CanEditEWS.Set && req.CanEditEWS.Value != nil {
		c.CanEditEWS = *req.CanEditEWS.Value
	}

	overwrite(&c.NHSSmartcardNumber, req.NHSSmartcardNumber)
	overwrite(&c.ProfessionalRegistrationNumber, req.ProfessionalRegistrationNumber)
	overwrite(&c.AgencyName, req.AgencyName)
	overwrite(&c.AgencyStaffEmployeeNumber, req.AgencyStaffEmployeeNumber)
	overwrite(&c.BookingReference, req.BookingReference)
	overwrite(&c.CanEditEncounter, req.CanEditEncounter)
	overwrite(&c.AnalyticsConsent, req.AnalyticsConsent)

	if req.SendEntryIdentifier.Set {
		c.SendEntryIdentifier = emptyToNil(req.SendEntryIdentifier.Value)
	}
	if req.EmailAddress.Set {
		c.EmailAddress = normaliseEmail(req.EmailAddress.Value)
	}

	if req.ContractExpiryEODDate.Set {
		expiry, err := parseOptionalDate("contract_expiry_eod_date", req.ContractExpiryEODDate.Value)
		if err != nil {
			return productChanges{}, err
		}
		c.ContractExpiryEODDate = expiry
	}

	if req.Password.Set && req.Password.Value != nil && *req.Password.Value != "" {
		if err := c.SetPassword(*req.Password.Value); err != nil {
			log.Error().Err(err).Str("component", "applyUpdate").Msg("")
			return productChanges{}, errs.ErrInternalServer
		}
	}

	c.Groups = pq.StringArray(domain.SortedUnion(c.Groups, req.Groups))
	c.Locations = pq.StringArray(domain.SortedUnion(c.Locations, req.Locations))
	c.Bookmarks = pq.StringArray(domain.SortedUnion(c.Bookmarks, req.Bookmarks))
	c.BookmarkedPatients = pq.StringArray(domain.SortedUnion(c.BookmarkedPatients, req.BookmarkedPatients))

	changes, err := mergeProducts(c, req.Products, actor, now)
	if err != nil {
		return changes, err
	}

	revokeIneligibleEWS(c)
	c.Modified = now
	c.ModifiedBy = actor

	return changes, nil
}

// applyRemoval subtracts the patch from the list fields, keeping the order of
// what remains, and drops the referenced products.
func applyRemoval(c *domain.Clinician, req dto.ClinicianRemoveRequest, actor string, now time.Time) productChanges {
	c.Groups = pq.StringArray(domain.Difference(c.Groups, req.Groups))
	c.Locations = pq.StringArray(domain.Difference(c.Locations, req.Locations))
	c.Bookmarks = pq.StringArray(domain.Difference(c.Bookmarks, req.Bookmarks))
	c.BookmarkedPatients = pq.StringArray(domain.Difference(c.BookmarkedPatients, req.BookmarkedPatients))

	drop := make(map[string]struct{}, len(req.Products))
	for _, ref := range req.Products {
		drop[ref.UUID] = struct{}{}
	}

	var changes productChanges
	kept := make([]domain.Product, 0, len(c.Products))
	for _, p := range c.Products {
		if _, ok := drop[p.UUID]; ok {
			changes.removed = append(changes.removed, p.UUID)
			continue
		}
		kept = append(kept, p)
	}
	c.Products = kept

	revokeIneligibleEWS(c)
	c.Modified = now
	c.ModifiedBy = actor

	return changes
}

// revokeIneligibleEWS clears can_edit_ews once the account is temporary or no
// longer holds a SEND clinician role.
func revokeIneligibleEWS(c *domain.Clinician) {
	if c.CanEditEWS && (c.IsTemporary() || !permission.IsSendClinician(c.Groups)) {
		c.CanEditEWS = false
	}
}

func overwrite[T any](dst **T, o dto.Optional[T]) {
	if !o.Set {
		return
	}
	if o.Value == nil {
		*dst = nil
		return
	}
	v := *o.Value
	*dst = &v
}

func normaliseEmail(email *string) *string {
	if email == nil {
		return nil
	}
	folded := strings.ToLower(strings.TrimSpace(*email))
	if folded == "" {
		return nil
	}
	return &folded
}

func emptyToNil(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	v := *value
	return &v
}

func stringPtr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(*value)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s %q", errs.ErrValidation, field, *value)
	}
	return &t, nil
}

// ensureArrays replaces nil list fields, which the store rejects.
func ensureArrays(c *domain.Clinician) {
	for _, arr := range []*pq.StringArray{&c.Groups, &c.Locations, &c.Bookmarks, &c.BookmarkedPatients} {
		if *arr == nil {
			*arr = pq.StringArray{}
		}
	}
}
