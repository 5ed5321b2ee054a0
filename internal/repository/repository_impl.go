package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alimikegami/healthcare-microservices/users-service/internal/domain"
	pkgdto "github.com/alimikegami/healthcare-microservices/users-service/pkg/dto"
	"github.com/alimikegami/healthcare-microservices/users-service/pkg/errs"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	uniqueViolation = "23505"

	badgeIdentifierConstraint = "clinician_send_entry_identifier_key"
	openProductConstraint     = "product_one_open_per_name_key"
)

const clinicianColumns = `uuid, created, created_by, modified, modified_by,
	first_name, last_name, phone_number, job_title, nhs_smartcard_number,
	email_address, send_entry_identifier, password_salt, password_hash,
	professional_registration_number, agency_name, agency_staff_employee_number,
	booking_reference, analytics_consent, can_edit_ews, can_edit_encounter,
	login_active, contract_expiry_eod_date, groups, locations, bookmarks, bookmarked_patients`

const productColumns = `uuid, created, created_by, modified, modified_by, user_id,
	product_name, opened_date, closed_date, closed_reason, closed_reason_other`

const termsAgreementColumns = `uuid, created, created_by, modified, modified_by, user_id,
	product_name, version, accepted_timestamp, tou_version, tou_accepted_timestamp,
	patient_notice_version, patient_notice_accepted_timestamp`

var sortableColumns = map[string]bool{
	"last_name":             true,
	"first_name":            true,
	"uuid":                  true,
	"nhs_smartcard_number":  true,
	"email_address":         true,
	"modified":              true,
	"created":               true,
	"phone_number":          true,
	"send_entry_identifier": true,
	"job_title":             true,
}

var defaultSort = []string{"last_name", "first_name"}

type ClinicianRepositoryImpl struct {
	db *sqlx.DB
	tx *sqlx.Tx
}

func CreateClinicianRepository(db *sqlx.DB) ClinicianRepository {
	return &ClinicianRepositoryImpl{
		db: db,
	}
}

// q returns the open transaction when running inside HandleTrx.
func (r *ClinicianRepositoryImpl) q() sqlx.ExtContext {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *ClinicianRepositoryImpl) HandleTrx(ctx context.Context, fn func(ctx context.Context, repo ClinicianRepository) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		log.Error().Err(err).Str("component", "HandleTrx").Msg("")
		return errs.ErrInternalServer
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		} else {
			err = translateError(tx.Commit())
		}
	}()

	trxRepo := &ClinicianRepositoryImpl{
		db: r.db,
		tx: tx,
	}

	return fn(ctx, trxRepo)
}

func (r *ClinicianRepositoryImpl) GetClinicianByID(ctx context.Context, uuid string) (data domain.Clinician, err error) {
	return r.getClinician(ctx, "GetClinicianByID", "SELECT "+clinicianColumns+" FROM clinician WHERE uuid = $1", uuid)
}

// GetClinicianByIDForUpdate locks the clinician row until the surrounding
// transaction ends. Outside HandleTrx the lock is released immediately.
func (r *ClinicianRepositoryImpl) GetClinicianByIDForUpdate(ctx context.Context, uuid string) (data domain.Clinician, err error) {
	return r.getClinician(ctx, "GetClinicianByIDForUpdate", "SELECT "+clinicianColumns+" FROM clinician WHERE uuid = $1 FOR UPDATE", uuid)
}

func (r *ClinicianRepositoryImpl) getClinician(ctx context.Context, component string, query string, uuid string) (data domain.Clinician, err error) {
	err = sqlx.GetContext(ctx, r.q(), &data, query, uuid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return data, fmt.Errorf("%w: no clinician found with UUID %s", errs.ErrNotFound, uuid)
		}
		log.Error().Err(err).Str("component", component).Msg("")
		return data, errs.ErrInternalServer
	}

	clinicians := []domain.Clinician{data}
	if err = r.loadChildren(ctx, clinicians); err != nil {
		return data, err
	}

	return clinicians[0], nil
}

func (r *ClinicianRepositoryImpl) GetCliniciansByEmail(ctx context.Context, email string) (data []domain.Clinician, err error) {
	return r.selectClinicians(ctx, "GetCliniciansByEmail",
		"SELECT "+clinicianColumns+" FROM clinician WHERE lower(email_address) = $1", strings.ToLower(strings.TrimSpace(email)))
}

// GetCliniciansByUsername matches the case folded email address or the exact
// badge identifier.
func (r *ClinicianRepositoryImpl) GetCliniciansByUsername(ctx context.Context, username string) (data []domain.Clinician, err error) {
	return r.selectClinicians(ctx, "GetCliniciansByUsername",
		"SELECT "+clinicianColumns+" FROM clinician WHERE lower(email_address) = $1 OR send_entry_identifier = $2",
		strings.ToLower(strings.TrimSpace(username)), username)
}

func (r *ClinicianRepositoryImpl) GetCliniciansByUUIDs(ctx context.Context, uuids []string) (data []domain.Clinician, err error) {
	return r.selectClinicians(ctx, "GetCliniciansByUUIDs",
		"SELECT "+clinicianColumns+" FROM clinician WHERE uuid = ANY($1)", pq.Array(uuids))
}

func (r *ClinicianRepositoryImpl) GetCliniciansAtLocation(ctx context.Context, locationID string) (data []domain.Clinician, err error) {
	return r.selectClinicians(ctx, "GetCliniciansAtLocation",
		"SELECT "+clinicianColumns+" FROM clinician WHERE $1 = ANY(locations)", locationID)
}

func (r *ClinicianRepositoryImpl) GetExpiredActiveClinicians(ctx context.Context, today time.Time) (data []domain.Clinician, err error) {
	return r.selectClinicians(ctx, "GetExpiredActiveClinicians",
		"SELECT "+clinicianColumns+" FROM clinician WHERE login_active = TRUE AND contract_expiry_eod_date < $1", today)
}

func (r *ClinicianRepositoryImpl) GetClinicians(ctx context.Context, filter pkgdto.Filter) (data []domain.Clinician, err error) {
	where, args := buildFilter(filter)
	query := "SELECT " + clinicianColumns + " FROM clinician" + where + buildOrderBy(filter)

	if filter.Limit > 0 {
		query += " LIMIT :limit"
		args["limit"] = filter.Limit
	}
	if filter.Offset > 0 {
		query += " OFFSET :offset"
		args["offset"] = filter.Offset
	}

	bound, boundArgs, err := sqlx.Named(query, args)
	if err != nil {
		log.Error().Err(err).Str("component", "GetClinicians").Msg("")
		return nil, errs.ErrInternalServer
	}

	return r.selectClinicians(ctx, "GetClinicians", r.db.Rebind(bound), boundArgs...)
}

func (r *ClinicianRepositoryImpl) CountClinicians(ctx context.Context, filter pkgdto.Filter) (count int64, err error) {
	where, args := buildFilter(filter)

	bound, boundArgs, err := sqlx.Named("SELECT COUNT(uuid) FROM clinician"+where, args)
	if err != nil {
		log.Error().Err(err).Str("component", "CountClinicians").Msg("")
		return 0, errs.ErrInternalServer
	}

	err = sqlx.GetContext(ctx, r.q(), &count, r.db.Rebind(bound), boundArgs...)
	if err != nil {
		log.Error().Err(err).Str("component", "CountClinicians").Msg("")
		return 0, errs.ErrInternalServer
	}

	return
}

func (r *ClinicianRepositoryImpl) BadgeIdentifierExists(ctx context.Context, badge string) (exists bool, err error) {
	err = sqlx.GetContext(ctx, r.q(), &exists, "SELECT EXISTS(SELECT 1 FROM clinician WHERE send_entry_identifier = $1)", badge)
	if err != nil {
		log.Error().Err(err).Str("component", "BadgeIdentifierExists").Msg("")
		return false, errs.ErrInternalServer
	}

	return
}

func (r *ClinicianRepositoryImpl) AddClinician(ctx context.Context, data domain.Clinician) (err error) {
	_, err = sqlx.NamedExecContext(ctx, r.q(), `INSERT INTO clinician(`+clinicianColumns+`) VALUES (
		:uuid, :created, :created_by, :modified, :modified_by,
		:first_name, :last_name, :phone_number, :job_title, :nhs_smartcard_number,
		:email_address, :send_entry_identifier, :password_salt, :password_hash,
		:professional_registration_number, :agency_name, :agency_staff_employee_number,
		:booking_reference, :analytics_consent, :can_edit_ews, :can_edit_encounter,
		:login_active, :contract_expiry_eod_date, :groups, :locations, :bookmarks, :bookmarked_patients)`, data)
	if err != nil {
		log.Error().Err(err).Str("component", "AddClinician").Msg("")
		return translateError(err)
	}

	for _, p := range data.Products {
		if err = r.AddProduct(ctx, p); err != nil {
			return err
		}
	}

	for _, ta := range data.TermsAgreements {
		if err = r.AddTermsAgreement(ctx, ta); err != nil {
			return err
		}
	}

	return nil
}

func (r *ClinicianRepositoryImpl) UpdateClinician(ctx context.Context, data domain.Clinician) (err error) {
	res, err := sqlx.NamedExecContext(ctx, r.q(), `UPDATE clinician SET
		modified = :modified, modified_by = :modified_by,
		first_name = :first_name, last_name = :last_name, phone_number = :phone_number,
		job_title = :job_title, nhs_smartcard_number = :nhs_smartcard_number,
		email_address = :email_address, send_entry_identifier = :send_entry_identifier,
		password_salt = :password_salt, password_hash = :password_hash,
		professional_registration_number = :professional_registration_number,
		agency_name = :agency_name, agency_staff_employee_number = :agency_staff_employee_number,
		booking_reference = :booking_reference, analytics_consent = :analytics_consent,
		can_edit_ews = :can_edit_ews, can_edit_encounter = :can_edit_encounter,
		login_active = :login_active, contract_expiry_eod_date = :contract_expiry_eod_date,
		groups = :groups, locations = :locations, bookmarks = :bookmarks,
		bookmarked_patients = :bookmarked_patients
		WHERE uuid = :uuid`, data)
	if err != nil {
		log.Error().Err(err).Str("component", "UpdateClinician").Msg("")
		return translateError(err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("%w: no clinician found with UUID %s", errs.ErrNotFound, data.UUID)
	}

	return nil
}

func (r *ClinicianRepositoryImpl) AddProduct(ctx context.Context, data domain.Product) (err error) {
	_, err = sqlx.NamedExecContext(ctx, r.q(), `INSERT INTO product(`+productColumns+`) VALUES (
		:uuid, :created, :created_by, :modified, :modified_by, :user_id,
		:product_name, :opened_date, :closed_date, :closed_reason, :closed_reason_other)`, data)
	if err != nil {
		log.Error().Err(err).Str("component", "AddProduct").Msg("")
		return translateError(err)
	}

	return nil
}

func (r *ClinicianRepositoryImpl) UpdateProduct(ctx context.Context, data domain.Product) (err error) {
	_, err = sqlx.NamedExecContext(ctx, r.q(), `UPDATE product SET
		modified = :modified, modified_by = :modified_by, product_name = :product_name,
		opened_date = :opened_date, closed_date = :closed_date,
		closed_reason = :closed_reason, closed_reason_other = :closed_reason_other
		WHERE uuid = :uuid`, data)
	if err != nil {
		log.Error().Err(err).Str("component", "UpdateProduct").Msg("")
		return translateError(err)
	}

	return nil
}

func (r *ClinicianRepositoryImpl) DeleteProducts(ctx context.Context, userID string, uuids []string) (err error) {
	_, err = r.q().ExecContext(ctx, "DELETE FROM product WHERE user_id = $1 AND uuid = ANY($2)", userID, pq.Array(uuids))
	if err != nil {
		log.Error().Err(err).Str("component", "DeleteProducts").Msg("")
		return errs.ErrInternalServer
	}

	return nil
}

func (r *ClinicianRepositoryImpl) AddTermsAgreement(ctx context.Context, data domain.TermsAgreement) (err error) {
	_, err = sqlx.NamedExecContext(ctx, r.q(), `INSERT INTO terms_agreement(`+termsAgreementColumns+`) VALUES (
		:uuid, :created, :created_by, :modified, :modified_by, :user_id,
		:product_name, :version, :accepted_timestamp, :tou_version, :tou_accepted_timestamp,
		:patient_notice_version, :patient_notice_accepted_timestamp)`, data)
	if err != nil {
		log.Error().Err(err).Str("component", "AddTermsAgreement").Msg("")
		return translateError(err)
	}

	return nil
}

func (r *ClinicianRepositoryImpl) selectClinicians(ctx context.Context, component string, query string, args ...interface{}) (data []domain.Clinician, err error) {
	data = []domain.Clinician{}
	err = sqlx.SelectContext(ctx, r.q(), &data, query, args...)
	if err != nil {
		log.Error().Err(err).Str("component", component).Msg("")
		return nil, errs.ErrInternalServer
	}

	if err = r.loadChildren(ctx, data); err != nil {
		return nil, err
	}

	return data, nil
}

// loadChildren attaches products and terms agreements to every clinician.
func (r *ClinicianRepositoryImpl) loadChildren(ctx context.Context, clinicians []domain.Clinician) error {
	if len(clinicians) == 0 {
		return nil
	}

	ids := make([]string, 0, len(clinicians))
	index := make(map[string]int, len(clinicians))
	for i, c := range clinicians {
		ids = append(ids, c.UUID)
		index[c.UUID] = i
		clinicians[i].Products = []domain.Product{}
		clinicians[i].TermsAgreements = []domain.TermsAgreement{}
	}

	products := []domain.Product{}
	err := sqlx.SelectContext(ctx, r.q(), &products,
		"SELECT "+productColumns+" FROM product WHERE user_id = ANY($1) ORDER BY created", pq.Array(ids))
	if err != nil {
		log.Error().Err(err).Str("component", "loadChildren").Msg("")
		return errs.ErrInternalServer
	}
	for _, p := range products {
		i := index[p.UserID]
		clinicians[i].Products = append(clinicians[i].Products, p)
	}

	terms := []domain.TermsAgreement{}
	err = sqlx.SelectContext(ctx, r.q(), &terms,
		"SELECT "+termsAgreementColumns+" FROM terms_agreement WHERE user_id = ANY($1) ORDER BY created", pq.Array(ids))
	if err != nil {
		log.Error().Err(err).Str("component", "loadChildren").Msg("")
		return errs.ErrInternalServer
	}
	for _, ta := range terms {
		i := index[ta.UserID]
		clinicians[i].TermsAgreements = append(clinicians[i].TermsAgreements, ta)
	}

	return nil
}

func buildFilter(filter pkgdto.Filter) (string, map[string]interface{}) {
	clauses := []string{}
	args := map[string]interface{}{}

	if filter.ProductName != "" {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM product p WHERE p.user_id = clinician.uuid AND p.product_name = :product_name)")
		args["product_name"] = filter.ProductName
	}

	if filter.LoginActive != nil {
		clauses = append(clauses, "login_active = :login_active")
		args["login_active"] = *filter.LoginActive
	}

	if filter.TempOnly {
		clauses = append(clauses, "contract_expiry_eod_date IS NOT NULL")
	}

	if filter.ModifiedSince != nil {
		clauses = append(clauses, "modified > :modified_since")
		args["modified_since"] = *filter.ModifiedSince
	}

	if filter.LocationID != "" {
		clauses = append(clauses, ":location_id = ANY(locations)")
		args["location_id"] = filter.LocationID
	}

	if filter.Q != "" {
		clauses = append(clauses, "((last_name || ' ' || first_name) ILIKE :q_like OR array_to_string(groups, ' ') ILIKE :q_like OR send_entry_identifier = :q)")
		args["q_like"] = "%" + filter.Q + "%"
		args["q"] = filter.Q
	}

	if len(clauses) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func buildOrderBy(filter pkgdto.Filter) string {
	sort := filter.Sort
	if len(sort) == 0 {
		sort = defaultSort
	}

	direction := "ASC"
	if strings.EqualFold(filter.Order, "desc") {
		direction = "DESC"
	}

	terms := []string{}
	for _, column := range sort {
		if !sortableColumns[column] {
			continue
		}
		terms = append(terms, column+" "+direction)
	}

	if len(terms) == 0 {
		return ""
	}

	return " ORDER BY " + strings.Join(terms, ", ")
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		if pqErr.Constraint == badgeIdentifierConstraint {
			return fmt.Errorf("%w: %w", errs.ErrDuplicateResource, errs.ErrDuplicateBadgeIdentifier)
		}
		if pqErr.Constraint == openProductConstraint {
			return fmt.Errorf("%w: product is already open for this clinician", errs.ErrConflict)
		}
		return fmt.Errorf("%w: %s", errs.ErrDuplicateResource, pqErr.Detail)
	}

	return errs.ErrInternalServer
}
