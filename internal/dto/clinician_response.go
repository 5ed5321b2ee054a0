package dto

import (
	"time"

	"github.com/alimikegami/healthcare-microservices/users-service/internal/domain"
	"github.com/alimikegami/healthcare-microservices/users-service/pkg/utils"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

type ProductResponse struct {
	UUID              string  `json:"uuid"`
	Created           string  `json:"created"`
	CreatedBy         string  `json:"created_by"`
	Modified          string  `json:"modified"`
	ModifiedBy        string  `json:"modified_by"`
	ProductName       string  `json:"product_name"`
	OpenedDate        string  `json:"opened_date"`
	ClosedDate        *string `json:"closed_date"`
	ClosedReason      *string `json:"closed_reason,omitempty"`
	ClosedReasonOther *string `json:"closed_reason_other,omitempty"`
}

type TermsAgreementResponse struct {
	UUID        string `json:"uuid"`
	Created     string `json:"created"`
	CreatedBy   string `json:"created_by"`
	Modified    string `json:"modified"`
	ModifiedBy  string `json:"modified_by"`
	ProductName string `json:"product_name"`

	Version           *int    `json:"version,omitempty"`
	AcceptedTimestamp *string `json:"accepted_timestamp,omitempty"`

	TouVersion           *int    `json:"tou_version,omitempty"`
	TouAcceptedTimestamp *string `json:"tou_accepted_timestamp,omitempty"`

	PatientNoticeVersion           *int    `json:"patient_notice_version,omitempty"`
	PatientNoticeAcceptedTimestamp *string `json:"patient_notice_accepted_timestamp,omitempty"`
}

type ClinicianResponse struct {
	UUID       string `json:"uuid"`
	Created    string `json:"created"`
	CreatedBy  string `json:"created_by"`
	Modified   string `json:"modified"`
	ModifiedBy string `json:"modified_by"`

	FirstName                      string                            `json:"first_name"`
	LastName                       string                            `json:"last_name"`
	PhoneNumber                    string                            `json:"phone_number"`
	JobTitle                       string                            `json:"job_title"`
	NHSSmartcardNumber             *string                           `json:"nhs_smartcard_number"`
	EmailAddress                   *string                           `json:"email_address"`
	SendEntryIdentifier            *string                           `json:"send_entry_identifier"`
	ProfessionalRegistrationNumber *string                           `json:"professional_registration_number"`
	AgencyName                     *string                           `json:"agency_name"`
	AgencyStaffEmployeeNumber      *string                           `json:"agency_staff_employee_number"`
	BookingReference               *string                           `json:"booking_reference"`
	AnalyticsConsent               *bool                             `json:"analytics_consent,omitempty"`
	CanEditEWS                     bool                              `json:"can_edit_ews"`
	CanEditEncounter               *bool                             `json:"can_edit_encounter"`
	LoginActive                    bool                              `json:"login_active"`
	ContractExpiryEODDate          *string                           `json:"contract_expiry_eod_date"`
	Groups                         []string                          `json:"groups"`
	Locations                      []string                          `json:"locations"`
	Bookmarks                      []string                          `json:"bookmarks"`
	BookmarkedPatients             []string                          `json:"bookmarked_patients"`
	Products                       []ProductResponse                 `json:"products"`
	TermsAgreement                 map[string]TermsAgreementResponse `json:"terms_agreement"`
}

type ClinicianCompactResponse struct {
	UUID         string  `json:"uuid"`
	Created      string  `json:"created"`
	CreatedBy    string  `json:"created_by"`
	Modified     string  `json:"modified"`
	ModifiedBy   string  `json:"modified_by"`
	JobTitle     string  `json:"job_title"`
	EmailAddress *string `json:"email_address"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
}

// ClinicianListItem is the default list projection. Locations are omitted in
// compact mode.
type ClinicianListItem struct {
	ClinicianCompactResponse
	SendEntryIdentifier   *string  `json:"send_entry_identifier"`
	ContractExpiryEODDate *string  `json:"contract_expiry_eod_date"`
	Groups                []string `json:"groups"`
	LoginActive           bool     `json:"login_active"`
	Locations             []string `json:"locations,omitempty"`
}

type LoginResponse struct {
	JobTitle         string            `json:"job_title"`
	EmailAddress     *string           `json:"email_address"`
	UserID           string            `json:"user_id"`
	Groups           []string          `json:"groups"`
	Products         []ProductResponse `json:"products"`
	CanEditEWS       bool              `json:"can_edit_ews"`
	CanEditEncounter *bool             `json:"can_edit_encounter"`
	Permissions      []string          `json:"permissions"`
}

// AuthProjection is the payload of clinician created/updated events.
type AuthProjection struct {
	UUID                  string            `json:"uuid"`
	Created               string            `json:"created"`
	CreatedBy             string            `json:"created_by"`
	Modified              string            `json:"modified"`
	ModifiedBy            string            `json:"modified_by"`
	JobTitle              string            `json:"job_title"`
	SendEntryIdentifier   *string           `json:"send_entry_identifier"`
	Locations             []string          `json:"locations"`
	LoginActive           bool              `json:"login_active"`
	ContractExpiryEODDate *string           `json:"contract_expiry_eod_date"`
	Groups                []string          `json:"groups"`
	Products              []ProductResponse `json:"products"`
}

type BulkCreateResponse struct {
	Created int `json:"created"`
}

func NewProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		UUID:              p.UUID,
		Created:           formatTimestamp(p.Created),
		CreatedBy:         p.CreatedBy,
		Modified:          formatTimestamp(p.Modified),
		ModifiedBy:        p.ModifiedBy,
		ProductName:       p.ProductName,
		OpenedDate:        utils.FormatDate(p.OpenedDate),
		ClosedDate:        formatDatePtr(p.ClosedDate),
		ClosedReason:      p.ClosedReason,
		ClosedReasonOther: p.ClosedReasonOther,
	}
}

func NewProductResponses(products []domain.Product) []ProductResponse {
	resp := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, NewProductResponse(p))
	}
	return resp
}

func NewTermsAgreementResponse(t domain.TermsAgreement) TermsAgreementResponse {
	resp := TermsAgreementResponse{
		UUID:        t.UUID,
		Created:     formatTimestamp(t.Created),
		CreatedBy:   t.CreatedBy,
		Modified:    formatTimestamp(t.Modified),
		ModifiedBy:  t.ModifiedBy,
		ProductName: t.ProductName,
	}

	if t.Version != nil && *t.Version != 0 {
		resp.Version = t.Version
		resp.AcceptedTimestamp = formatTimestampPtr(t.AcceptedTimestamp)
	}
	if t.TouVersion != nil && *t.TouVersion != 0 {
		resp.TouVersion = t.TouVersion
		resp.TouAcceptedTimestamp = formatTimestampPtr(t.TouAcceptedTimestamp)
	}
	if t.PatientNoticeVersion != nil && *t.PatientNoticeVersion != 0 {
		resp.PatientNoticeVersion = t.PatientNoticeVersion
		resp.PatientNoticeAcceptedTimestamp = formatTimestampPtr(t.PatientNoticeAcceptedTimestamp)
	}

	return resp
}

func NewClinicianResponse(c domain.Clinician) ClinicianResponse {
	terms := map[string]TermsAgreementResponse{}
	for product, ta := range c.LatestTermsAgreements() {
		terms[product] = NewTermsAgreementResponse(ta)
	}

	return ClinicianResponse{
		UUID:                           c.UUID,
		Created:                        formatTimestamp(c.Created),
		CreatedBy:                      c.CreatedBy,
		Modified:                       formatTimestamp(c.Modified),
		ModifiedBy:                     c.ModifiedBy,
		FirstName:                      c.FirstName,
		LastName:                       c.LastName,
		PhoneNumber:                    c.PhoneNumber,
		JobTitle:                       c.JobTitle,
		NHSSmartcardNumber:             c.NHSSmartcardNumber,
		EmailAddress:                   c.EmailAddress,
		SendEntryIdentifier:            c.SendEntryIdentifier,
		ProfessionalRegistrationNumber: c.ProfessionalRegistrationNumber,
		AgencyName:                     c.AgencyName,
		AgencyStaffEmployeeNumber:      c.AgencyStaffEmployeeNumber,
		BookingReference:               c.BookingReference,
		AnalyticsConsent:               c.AnalyticsConsent,
		CanEditEWS:                     c.CanEditEWS,
		CanEditEncounter:               c.CanEditEncounter,
		LoginActive:                    c.LoginActive,
		ContractExpiryEODDate:          formatDatePtr(c.ContractExpiryEODDate),
		Groups:                         nonNil(c.Groups),
		Locations:                      nonNil(c.Locations),
		Bookmarks:                      nonNil(c.Bookmarks),
		BookmarkedPatients:             nonNil(c.BookmarkedPatients),
		Products:                       NewProductResponses(c.Products),
		TermsAgreement:                 terms,
	}
}

func NewClinicianCompactResponse(c domain.Clinician) ClinicianCompactResponse {
	return ClinicianCompactResponse{
		UUID:         c.UUID,
		Created:      formatTimestamp(c.Created),
		CreatedBy:    c.CreatedBy,
		Modified:     formatTimestamp(c.Modified),
		ModifiedBy:   c.ModifiedBy,
		JobTitle:     c.JobTitle,
		EmailAddress: c.EmailAddress,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
	}
}

func NewClinicianListItem(c domain.Clinician, compact bool) ClinicianListItem {
	item := ClinicianListItem{
		ClinicianCompactResponse: NewClinicianCompactResponse(c),
		SendEntryIdentifier:      c.SendEntryIdentifier,
		ContractExpiryEODDate:    formatDatePtr(c.ContractExpiryEODDate),
		Groups:                   nonNil(c.Groups),
		LoginActive:              c.LoginActive,
	}
	if !compact {
		item.Locations = nonNil(c.Locations)
	}
	return item
}

func NewLoginResponse(c domain.Clinician, permissions []string) LoginResponse {
	return LoginResponse{
		JobTitle:         c.JobTitle,
		EmailAddress:     c.EmailAddress,
		UserID:           c.UUID,
		Groups:           nonNil(c.Groups),
		Products:         NewProductResponses(c.OpenProducts()),
		CanEditEWS:       c.CanEditEWS,
		CanEditEncounter: c.CanEditEncounter,
		Permissions:      permissions,
	}
}

func NewAuthProjection(c domain.Clinician) AuthProjection {
	return AuthProjection{
		UUID:                  c.UUID,
		Created:               formatTimestamp(c.Created),
		CreatedBy:             c.CreatedBy,
		Modified:              formatTimestamp(c.Modified),
		ModifiedBy:            c.ModifiedBy,
		JobTitle:              c.JobTitle,
		SendEntryIdentifier:   c.SendEntryIdentifier,
		Locations:             nonNil(c.Locations),
		LoginActive:           c.LoginActive,
		ContractExpiryEODDate: formatDatePtr(c.ContractExpiryEODDate),
		Groups:                nonNil(c.Groups),
		Products:              NewProductResponses(c.Products),
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}

func formatTimestampPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTimestamp(*t)
	return &s
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := utils.FormatDate(*t)
	return &s
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
