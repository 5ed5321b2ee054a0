package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alimikegami/healthcare-microservices/users-service/internal/domain"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/repository"
	pkgdto "github.com/alimikegami/healthcare-microservices/users-service/pkg/dto"
	"github.com/alimikegami/healthcare-microservices/users-service/pkg/errs"
	"github.com/lib/pq"
	"github.com/stretchr/testify/mock"
)

// memoryRepository is an in-memory record store that enforces the same
// unique constraints as the database and rolls back failed transactions.
// Transactions run one at a time, which stands in for row locks.
type memoryRepository struct {
	mu         sync.Mutex
	trxMu      sync.Mutex
	clinicians map[string]domain.Clinician

	updateErr error
	trxCount  int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{clinicians: map[string]domain.Clinician{}}
}

func (r *memoryRepository) seed(c domain.Clinician) {
	ensureArrays(&c)
	for i := range c.Products {
		c.Products[i].UserID = c.UUID
	}
	r.clinicians[c.UUID] = cloneClinician(c)
}

func (r *memoryRepository) get(uuid string) domain.Clinician {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneClinician(r.clinicians[uuid])
}

func (r *memoryRepository) HandleTrx(ctx context.Context, fn func(ctx context.Context, repo repository.ClinicianRepository) error) error {
	r.trxMu.Lock()
	defer r.trxMu.Unlock()

	r.mu.Lock()
	snapshot := make(map[string]domain.Clinician, len(r.clinicians))
	for k, v := range r.clinicians {
		snapshot[k] = cloneClinician(v)
	}
	r.trxCount++
	r.mu.Unlock()

	if err := fn(ctx, r); err != nil {
		r.mu.Lock()
		r.clinicians = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *memoryRepository) GetClinicianByID(ctx context.Context, uuid string) (domain.Clinician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clinicians[uuid]
	if !ok {
		return domain.Clinician{}, fmt.Errorf("%w: no user found with UUID %s", errs.ErrNotFound, uuid)
	}
	return cloneClinician(c), nil
}

func (r *memoryRepository) GetClinicianByIDForUpdate(ctx context.Context, uuid string) (domain.Clinician, error) {
	return r.GetClinicianByID(ctx, uuid)
}

func (r *memoryRepository) GetCliniciansByEmail(ctx context.Context, email string) ([]domain.Clinician, error) {
	return r.filter(func(c domain.Clinician) bool {
		return c.EmailAddress != nil && *c.EmailAddress == email
	}), nil
}

func (r *memoryRepository) GetCliniciansByUsername(ctx context.Context, username string) ([]domain.Clinician, error) {
	folded := strings.ToLower(strings.TrimSpace(username))
	return r.filter(func(c domain.Clinician) bool {
		return (c.EmailAddress != nil && *c.EmailAddress == folded) ||
			(c.SendEntryIdentifier != nil && *c.SendEntryIdentifier == username)
	}), nil
}

func (r *memoryRepository) GetCliniciansByUUIDs(ctx context.Context, uuids []string) ([]domain.Clinician, error) {
	return r.filter(func(c domain.Clinician) bool {
		return domain.Contains(uuids, c.UUID)
	}), nil
}

func (r *memoryRepository) GetCliniciansAtLocation(ctx context.Context, locationID string) ([]domain.Clinician, error) {
	return r.filter(func(c domain.Clinician) bool {
		return domain.Contains(c.Locations, locationID)
	}), nil
}

func (r *memoryRepository) GetClinicians(ctx context.Context, filter pkgdto.Filter) ([]domain.Clinician, error) {
	return r.filter(func(c domain.Clinician) bool {
		return filter.ProductName == "" || domain.Contains(c.ProductNames(), filter.ProductName)
	}), nil
}

func (r *memoryRepository) CountClinicians(ctx context.Context, filter pkgdto.Filter) (int64, error) {
	data, _ := r.GetClinicians(ctx, filter)
	return int64(len(data)), nil
}

func (r *memoryRepository) GetExpiredActiveClinicians(ctx context.Context, today time.Time) ([]domain.Clinician, error) {
	return r.filter(func(c domain.Clinician) bool {
		return c.LoginActive && c.ContractExpiryEODDate != nil && c.ContractExpiryEODDate.Before(today)
	}), nil
}

func (r *memoryRepository) BadgeIdentifierExists(ctx context.Context, badge string) (bool, error) {
	return len(r.filter(func(c domain.Clinician) bool {
		return c.SendEntryIdentifier != nil && *c.SendEntryIdentifier == badge
	})) > 0, nil
}

func (r *memoryRepository) AddClinician(ctx context.Context, data domain.Clinician) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(data); err != nil {
		return err
	}
	for i := range data.TermsAgreements {
		data.TermsAgreements[i].UserID = data.UUID
	}
	r.clinicians[data.UUID] = cloneClinician(data)
	return nil
}

func (r *memoryRepository) UpdateClinician(ctx context.Context, data domain.Clinician) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.updateErr != nil {
		return r.updateErr
	}
	existing, ok := r.clinicians[data.UUID]
	if !ok {
		return fmt.Errorf("%w: no clinician found with UUID %s", errs.ErrNotFound, data.UUID)
	}
	if err := r.checkUnique(data); err != nil {
		return err
	}
	if data.Groups == nil || data.Locations == nil || data.Bookmarks == nil || data.BookmarkedPatients == nil {
		return fmt.Errorf("%w: null array column", errs.ErrInternalServer)
	}

	// child rows are written separately
	data.Products = existing.Products
	data.TermsAgreements = existing.TermsAgreements
	r.clinicians[data.UUID] = cloneClinician(data)
	return nil
}

func (r *memoryRepository) AddProduct(ctx context.Context, data domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.clinicians[data.UserID]
	if data.IsOpen() && c.HasOpenProduct(data.ProductName, "") {
		return fmt.Errorf("%w: product_one_open_per_name_key", errs.ErrConflict)
	}
	c.Products = append(c.Products, data)
	r.clinicians[data.UserID] = c
	return nil
}

func (r *memoryRepository) UpdateProduct(ctx context.Context, data domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.clinicians[data.UserID]
	for i := range c.Products {
		if c.Products[i].UUID == data.UUID {
			c.Products[i] = data
		}
	}
	r.clinicians[data.UserID] = c
	return nil
}

func (r *memoryRepository) DeleteProducts(ctx context.Context, userID string, uuids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.clinicians[userID]
	kept := []domain.Product{}
	for _, p := range c.Products {
		if !domain.Contains(uuids, p.UUID) {
			kept = append(kept, p)
		}
	}
	c.Products = kept
	r.clinicians[userID] = c
	return nil
}

func (r *memoryRepository) AddTermsAgreement(ctx context.Context, data domain.TermsAgreement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.clinicians[data.UserID]
	c.TermsAgreements = append(c.TermsAgreements, data)
	r.clinicians[data.UserID] = c
	return nil
}

func (r *memoryRepository) checkUnique(data domain.Clinician) error {
	for id, c := range r.clinicians {
		if id == data.UUID {
			continue
		}
		if data.EmailAddress != nil && c.EmailAddress != nil && *data.EmailAddress == *c.EmailAddress {
			return fmt.Errorf("%w: clinician_email_address_key", errs.ErrDuplicateResource)
		}
		if data.SendEntryIdentifier != nil && c.SendEntryIdentifier != nil && *data.SendEntryIdentifier == *c.SendEntryIdentifier {
			return fmt.Errorf("%w: %w", errs.ErrDuplicateResource, errs.ErrDuplicateBadgeIdentifier)
		}
	}
	return nil
}

func (r *memoryRepository) filter(keep func(c domain.Clinician) bool) []domain.Clinician {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []domain.Clinician{}
	for _, c := range r.clinicians {
		if keep(c) {
			out = append(out, cloneClinician(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UUID < out[j].UUID })
	return out
}

func cloneClinician(c domain.Clinician) domain.Clinician {
	c.Groups = append(pq.StringArray(nil), c.Groups...)
	c.Locations = append(pq.StringArray(nil), c.Locations...)
	c.Bookmarks = append(pq.StringArray(nil), c.Bookmarks...)
	c.BookmarkedPatients = append(pq.StringArray(nil), c.BookmarkedPatients...)
	c.Products = append([]domain.Product(nil), c.Products...)
	c.TermsAgreements = append([]domain.TermsAgreement(nil), c.TermsAgreements...)
	ensureArrays(&c)
	return c
}

type mockGroupSynchronizer struct {
	mock.Mock
}

func (m *mockGroupSynchronizer) AddToGroups(ctx context.Context, userID string, groups []string) error {
	args := m.Called(ctx, userID, groups)
	return args.Error(0)
}

func (m *mockGroupSynchronizer) RemoveFromGroups(ctx context.Context, userID string, groups []string) error {
	args := m.Called(ctx, userID, groups)
	return args.Error(0)
}

type publishedEvent struct {
	EventType string
	Key       string
	Data      interface{}
}

// recordingPublisher keeps every event in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType string, key string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{EventType: eventType, Key: key, Data: data})
}

func (p *recordingPublisher) ofType(eventType string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := []publishedEvent{}
	for _, e := range p.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}
