package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/alimikegami/healthcare-microservices/users-service/pkg/errs"
)

type ProductRequest struct {
	UUID              *string `json:"uuid"`
	ProductName       string  `json:"product_name"`
	OpenedDate        *string `json:"opened_date"`
	ClosedDate        *string `json:"closed_date"`
	ClosedReason      *string `json:"closed_reason"`
	ClosedReasonOther *string `json:"closed_reason_other"`
}

type TermsAgreementRequest struct {
	ProductName string `json:"product_name"`

	Version           *int       `json:"version"`
	AcceptedTimestamp *time.Time `json:"accepted_timestamp"`

	TouVersion           *int       `json:"tou_version"`
	TouAcceptedTimestamp *time.Time `json:"tou_accepted_timestamp"`

	PatientNoticeVersion           *int       `json:"patient_notice_version"`
	PatientNoticeAcceptedTimestamp *time.Time `json:"patient_notice_accepted_timestamp"`
}

func (r TermsAgreementRequest) Validate() error {
	if strings.TrimSpace(r.ProductName) == "" {
		return fmt.Errorf("%w: product_name is required", errs.ErrValidation)
	}
	if r.Version == nil && r.TouVersion == nil && r.PatientNoticeVersion == nil {
		return fmt.Errorf("%w: at least one version is required", errs.ErrValidation)
	}
	return nil
}

type ClinicianCreateRequest struct {
	FirstName          string           `json:"first_name"`
	LastName           string           `json:"last_name"`
	PhoneNumber        string           `json:"phone_number"`
	JobTitle           string           `json:"job_title"`
	NHSSmartcardNumber string           `json:"nhs_smartcard_number"`
	Locations          []string         `json:"locations"`
	Groups             StringList       `json:"groups"`
	Products           []ProductRequest `json:"products"`

	EmailAddress                   *string  `json:"email_address"`
	SendEntryIdentifier            *string  `json:"send_entry_identifier"`
	LoginActive                    *bool    `json:"login_active"`
	ContractExpiryEODDate          *string  `json:"contract_expiry_eod_date"`
	Bookmarks                      []string `json:"bookmarks"`
	BookmarkedPatients             []string `json:"bookmarked_patients"`
	CanEditEWS                     *bool    `json:"can_edit_ews"`
	CanEditEncounter               *bool    `json:"can_edit_encounter"`
	ProfessionalRegistrationNumber *string  `json:"professional_registration_number"`
	AgencyName                     *string  `json:"agency_name"`
	AgencyStaffEmployeeNumber      *string  `json:"agency_staff_employee_number"`
	BookingReference               *string  `json:"booking_reference"`
	AnalyticsConsent               *bool    `json:"analytics_consent"`
}

func (r ClinicianCreateRequest) Validate() error {
	missing := []string{}
	if strings.TrimSpace(r.FirstName) == "" {
		missing = append(missing, "first_name")
	}
	if strings.TrimSpace(r.LastName) == "" {
		missing = append(missing, "last_name")
	}
	if r.PhoneNumber == "" {
		missing = append(missing, "phone_number")
	}
	if r.JobTitle == "" {
		missing = append(missing, "job_title")
	}
	if r.NHSSmartcardNumber == "" {
		missing = append(missing, "nhs_smartcard_number")
	}
	if r.Locations == nil {
		missing = append(missing, "locations")
	}
	if r.Groups == nil {
		missing = append(missing, "groups")
	}
	if r.Products == nil {
		missing = append(missing, "products")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields %s", errs.ErrValidation, strings.Join(missing, ", "))
	}

	for _, p := range r.Products {
		if p.ProductName == "" {
			return fmt.Errorf("%w: product_name is required", errs.ErrValidation)
		}
	}

	return nil
}

func (r ClinicianCreateRequest) ProductNames() []string {
	names := make([]string, 0, len(r.Products))
	for _, p := range r.Products {
		names = append(names, p.ProductName)
	}
	return names
}

// ClinicianUpdateRequest is an additive patch. Unset fields are left alone;
// list fields are merged into the existing values.
type ClinicianUpdateRequest struct {
	FirstName                      Optional[string] `json:"first_name"`
	LastName                       Optional[string] `json:"last_name"`
	PhoneNumber                    Optional[string] `json:"phone_number"`
	JobTitle                       Optional[string] `json:"job_title"`
	NHSSmartcardNumber             Optional[string] `json:"nhs_smartcard_number"`
	SendEntryIdentifier            Optional[string] `json:"send_entry_identifier"`
	EmailAddress                   Optional[string] `json:"email_address"`
	LoginActive                    Optional[bool]   `json:"login_active"`
	ContractExpiryEODDate          Optional[string] `json:"contract_expiry_eod_date"`
	CanEditEWS                     Optional[bool]   `json:"can_edit_ews"`
	CanEditEncounter               Optional[bool]   `json:"can_edit_encounter"`
	ProfessionalRegistrationNumber Optional[string] `json:"professional_registration_number"`
	AgencyName                     Optional[string] `json:"agency_name"`
	AgencyStaffEmployeeNumber      Optional[string] `json:"agency_staff_employee_number"`
	BookingReference               Optional[string] `json:"booking_reference"`
	AnalyticsConsent               Optional[bool]   `json:"analytics_consent"`
	Password                       Optional[string] `json:"password"`

	Groups             StringList       `json:"groups"`
	Locations          []string         `json:"locations"`
	Bookmarks          []string         `json:"bookmarks"`
	BookmarkedPatients []string         `json:"bookmarked_patients"`
	Products           []ProductRequest `json:"products"`
}

// FieldNames lists the fields present in the patch. A password counts as
// touching both password_salt and password_hash.
func (r ClinicianUpdateRequest) FieldNames() []string {
	fields := []string{}
	add := func(set bool, names ...string) {
		if set {
			fields = append(fields, names...)
		}
	}

	add(r.FirstName.Set, "first_name")
	add(r.LastName.Set, "last_name")
	add(r.PhoneNumber.Set, "phone_number")
	add(r.JobTitle.Set, "job_title")
	add(r.NHSSmartcardNumber.Set, "nhs_smartcard_number")
	add(r.SendEntryIdentifier.Set, "send_entry_identifier")
	add(r.EmailAddress.Set, "email_address")
	add(r.LoginActive.Set, "login_active")
	add(r.ContractExpiryEODDate.Set, "contract_expiry_eod_date")
	add(r.CanEditEWS.Set, "can_edit_ews")
	add(r.CanEditEncounter.Set, "can_edit_encounter")
	add(r.ProfessionalRegistrationNumber.Set, "professional_registration_number")
	add(r.AgencyName.Set, "agency_name")
	add(r.AgencyStaffEmployeeNumber.Set, "agency_staff_employee_number")
	add(r.BookingReference.Set, "booking_reference")
	add(r.AnalyticsConsent.Set, "analytics_consent")
	add(r.Password.Set, "password_salt", "password_hash")
	add(r.Groups != nil, "groups")
	add(r.Locations != nil, "locations")
	add(r.Bookmarks != nil, "bookmarks")
	add(r.BookmarkedPatients != nil, "bookmarked_patients")
	add(r.Products != nil, "products")

	return fields
}

type ProductReference struct {
	UUID string `json:"uuid"`
}

// ClinicianRemoveRequest removes entries from the collection fields. Any other
// key in the body is accepted and ignored.
type ClinicianRemoveRequest struct {
	Groups             StringList         `json:"groups"`
	Locations          []string           `json:"locations"`
	Bookmarks          []string           `json:"bookmarks"`
	BookmarkedPatients []string           `json:"bookmarked_patients"`
	Products           []ProductReference `json:"products"`
}

type UpdatePasswordRequest struct {
	Password string `json:"password"`
}

// BulkClinicianRequest carries a pre-assigned identity and may carry an
// already hashed password.
type BulkClinicianRequest struct {
	ClinicianCreateRequest
	UUID            string                  `json:"uuid"`
	PasswordSalt    *string                 `json:"password_salt"`
	PasswordHash    *string                 `json:"password_hash"`
	TermsAgreements []TermsAgreementRequest `json:"terms_agreements"`
}

type ClinicianUUIDsRequest []string
