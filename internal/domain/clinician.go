package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/alimikegami/healthcare-microservices/users-service/pkg/errs"
	"github.com/alimikegami/healthcare-microservices/users-service/pkg/utils"
	"github.com/lib/pq"
)

const ProductSEND = "SEND"

type Clinician struct {
	UUID       string    `db:"uuid"`
	Created    time.Time `db:"created"`
	CreatedBy  string    `db:"created_by"`
	Modified   time.Time `db:"modified"`
	ModifiedBy string    `db:"modified_by"`

	FirstName          string  `db:"first_name"`
	LastName           string  `db:"last_name"`
	PhoneNumber        string  `db:"phone_number"`
	JobTitle           string  `db:"job_title"`
	NHSSmartcardNumber *string `db:"nhs_smartcard_number"`

	EmailAddress        *string `db:"email_address"`
	SendEntryIdentifier *string `db:"send_entry_identifier"`
	PasswordSalt        *string `db:"password_salt"`
	PasswordHash        *string `db:"password_hash"`

	ProfessionalRegistrationNumber *string `db:"professional_registration_number"`
	AgencyName                     *string `db:"agency_name"`
	AgencyStaffEmployeeNumber      *string `db:"agency_staff_employee_number"`
	BookingReference               *string `db:"booking_reference"`
	AnalyticsConsent               *bool   `db:"analytics_consent"`

	CanEditEWS            bool       `db:"can_edit_ews"`
	CanEditEncounter      *bool      `db:"can_edit_encounter"`
	LoginActive           bool       `db:"login_active"`
	ContractExpiryEODDate *time.Time `db:"contract_expiry_eod_date"`

	Groups             pq.StringArray `db:"groups"`
	Locations          pq.StringArray `db:"locations"`
	Bookmarks          pq.StringArray `db:"bookmarks"`
	BookmarkedPatients pq.StringArray `db:"bookmarked_patients"`

	Products        []Product        `db:"-"`
	TermsAgreements []TermsAgreement `db:"-"`
}

// IsTemporary reports whether the account carries a contract expiry date.
func (c *Clinician) IsTemporary() bool {
	return c.ContractExpiryEODDate != nil
}

func (c *Clinician) IsExpired(now time.Time) bool {
	return c.ContractExpiryEODDate != nil && utils.IsExpired(*c.ContractExpiryEODDate, now)
}

func (c *Clinician) OpenProducts() []Product {
	open := []Product{}
	for _, p := range c.Products {
		if p.IsOpen() {
			open = append(open, p)
		}
	}
	return open
}

// HasOpenProduct reports whether an open product with the given name exists,
// ignoring the product identified by excludeUUID.
func (c *Clinician) HasOpenProduct(name string, excludeUUID string) bool {
	for _, p := range c.Products {
		if p.UUID == excludeUUID {
			continue
		}
		if p.ProductName == name && p.IsOpen() {
			return true
		}
	}
	return false
}

func (c *Clinician) FindProduct(uuid string) (*Product, bool) {
	for i := range c.Products {
		if c.Products[i].UUID == uuid {
			return &c.Products[i], true
		}
	}
	return nil, false
}

func (c *Clinician) ProductNames() []string {
	names := make([]string, 0, len(c.Products))
	for _, p := range c.Products {
		names = append(names, p.ProductName)
	}
	return names
}

// LatestTermsAgreements maps each product name to its highest version agreement.
func (c *Clinician) LatestTermsAgreements() map[string]TermsAgreement {
	latest := map[string]TermsAgreement{}
	for _, ta := range c.TermsAgreements {
		current, ok := latest[ta.ProductName]
		if !ok || ta.effectiveVersion() > current.effectiveVersion() {
			latest[ta.ProductName] = ta
		}
	}
	return latest
}

func (c *Clinician) SetPassword(password string) error {
	salt, err := utils.GenerateSalt()
	if err != nil {
		return err
	}

	hash, err := utils.DeriveHash(password, salt)
	if err != nil {
		return err
	}

	c.PasswordSalt = &salt
	c.PasswordHash = &hash
	return nil
}

// SetPasswordHash stores a precomputed salt and hash pair. Both must be given.
func (c *Clinician) SetPasswordHash(salt, hash string) error {
	if salt == "" || hash == "" {
		return fmt.Errorf("%w: password salt and hash must be set together", errs.ErrValidation)
	}
	c.PasswordSalt = &salt
	c.PasswordHash = &hash
	return nil
}

func (c *Clinician) PasswordHashFor(password string) (string, error) {
	if c.PasswordSalt == nil || *c.PasswordSalt == "" {
		return "", fmt.Errorf("%w: salt missing", errs.ErrPrecondition)
	}
	return utils.DeriveHash(password, *c.PasswordSalt)
}

// VerifyPassword returns false when no password has been set yet.
func (c *Clinician) VerifyPassword(password string) bool {
	if c.PasswordHash == nil || *c.PasswordHash == "" {
		return false
	}

	hash, err := c.PasswordHashFor(password)
	if err != nil {
		return false
	}

	return utils.HashesEqual(hash, *c.PasswordHash)
}

// SortedUnion returns the deduplicated, sorted union of existing and added.
func SortedUnion(existing []string, added []string) []string {
	set := make(map[string]struct{}, len(existing)+len(added))
	for _, v := range existing {
		set[v] = struct{}{}
	}
	for _, v := range added {
		set[v] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Difference removes every value in removed from existing, keeping order.
func Difference(existing []string, removed []string) []string {
	drop := make(map[string]struct{}, len(removed))
	for _, v := range removed {
		drop[v] = struct{}{}
	}

	out := make([]string, 0, len(existing))
	for _, v := range existing {
		if _, ok := drop[v]; ok {
			continue
		}
		out = append(out, v)
	}
	return out
}

func Contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
