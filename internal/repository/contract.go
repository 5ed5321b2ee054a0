package repository

import (
	"context"
	"time"

	"github.com/alimikegami/healthcare-microservices/users-service/internal/domain"
	pkgdto "github.com/alimikegami/healthcare-microservices/users-service/pkg/dto"
)

type ClinicianRepository interface {
	HandleTrx(ctx context.Context, fn func(ctx context.Context, repo ClinicianRepository) error) error

	GetClinicianByID(ctx context.Context, uuid string) (data domain.Clinician, err error)
	GetClinicianByIDForUpdate(ctx context.Context, uuid string) (data domain.Clinician, err error)
	GetCliniciansByEmail(ctx context.Context, email string) (data []domain.Clinician, err error)
	GetCliniciansByUsername(ctx context.Context, username string) (data []domain.Clinician, err error)
	GetCliniciansByUUIDs(ctx context.Context, uuids []string) (data []domain.Clinician, err error)
	GetCliniciansAtLocation(ctx context.Context, locationID string) (data []domain.Clinician, err error)
	GetClinicians(ctx context.Context, filter pkgdto.Filter) (data []domain.Clinician, err error)
	CountClinicians(ctx context.Context, filter pkgdto.Filter) (count int64, err error)
	GetExpiredActiveClinicians(ctx context.Context, today time.Time) (data []domain.Clinician, err error)
	BadgeIdentifierExists(ctx context.Context, badge string) (exists bool, err error)

	AddClinician(ctx context.Context, data domain.Clinician) (err error)
	UpdateClinician(ctx context.Context, data domain.Clinician) (err error)
	AddProduct(ctx context.Context, data domain.Product) (err error)
	UpdateProduct(ctx context.Context, data domain.Product) (err error)
	DeleteProducts(ctx context.Context, userID string, uuids []string) (err error)
	AddTermsAgreement(ctx context.Context, data domain.TermsAgreement) (err error)
}
