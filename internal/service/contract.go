package service

import (
	"context"

	"github.com/alimikegami/healthcare-microservices/users-service/internal/domain"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/dto"
	pkgdto "github.com/alimikegami/healthcare-microservices/users-service/pkg/dto"
)

type ClinicianService interface {
	CreateClinician(ctx context.Context, principal domain.Principal, req dto.ClinicianCreateRequest, sendWelcomeEmail bool) (resp dto.ClinicianResponse, err error)
	CreateCliniciansBulk(ctx context.Context, principal domain.Principal, reqs []dto.BulkClinicianRequest) (resp dto.BulkCreateResponse, err error)

	GetClinicianByID(ctx context.Context, id string, tempOnly bool) (resp dto.ClinicianResponse, err error)
	GetClinicianByEmail(ctx context.Context, email string) (resp dto.ClinicianResponse, err error)
	GetClinicians(ctx context.Context, filter pkgdto.Filter) (resp pkgdto.PaginationResponse, err error)
	GetCliniciansByUUIDs(ctx context.Context, uuids []string, compact bool) (resp map[string]interface{}, err error)
	GetCliniciansAtLocation(ctx context.Context, locationID string) (resp []dto.ClinicianResponse, err error)

	UpdateClinician(ctx context.Context, principal domain.Principal, id string, req dto.ClinicianUpdateRequest, editTempOnly bool) (resp dto.ClinicianResponse, err error)
	RemoveFromClinician(ctx context.Context, principal domain.Principal, id string, req dto.ClinicianRemoveRequest) (resp dto.ClinicianResponse, err error)
	UpdatePasswordByEmail(ctx context.Context, principal domain.Principal, email string, password string) (resp dto.ClinicianResponse, err error)
	CreateTermsAgreement(ctx context.Context, principal domain.Principal, id string, req dto.TermsAgreementRequest) (resp dto.TermsAgreementResponse, err error)

	AddLocationBookmark(ctx context.Context, principal domain.Principal, id string, locationID string) (err error)
	RemoveLocationBookmark(ctx context.Context, principal domain.Principal, id string, locationID string) (err error)
	AddPatientBookmark(ctx context.Context, principal domain.Principal, id string, patientID string) (err error)
	RemovePatientBookmark(ctx context.Context, principal domain.Principal, id string, patientID string) (err error)

	Login(ctx context.Context, credential string) (resp dto.LoginResponse, err error)
	GetRoles(ctx context.Context) map[string][]string

	DeactivateExpiredClinicians(ctx context.Context) (deactivated int, err error)
}

// GroupSynchronizer mirrors group membership changes to the external identity
// provider. Failures must wrap errs.ErrServiceUnavailable.
type GroupSynchronizer interface {
	AddToGroups(ctx context.Context, userID string, groups []string) error
	RemoveFromGroups(ctx context.Context, userID string, groups []string) error
}

// EventPublisher is fire-and-forget; it never reports failure to the caller.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, key string, data interface{})
}
