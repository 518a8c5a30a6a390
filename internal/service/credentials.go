// Package service implements the vault's credential operations, delegating
// persistence to a CredentialRepository.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/GophVault/internal/hasher"
	"github.com/atinyakov/GophVault/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrInvalidEntry is returned when a required key field is empty.
	ErrInvalidEntry = errors.New("owner and name are required")
	// ErrPlaintextPassword is returned when a create request carries anything
	// other than a digest in its password field.
	ErrPlaintextPassword = errors.New("password must be a digest")
	// ErrNotFound is returned when a delete matched no rows.
	ErrNotFound = errors.New("no matching records")
)

// CredentialRepository defines the persistence operations required by the
// CredentialService. Each call must be atomic on its own.
type CredentialRepository interface {
	// Insert appends one record.
	Insert(ctx context.Context, rec models.CredentialRecord) error
	// ListByOwner returns every record whose owner equals owner.
	ListByOwner(ctx context.Context, owner string) ([]models.CredentialRecord, error)
	// DeleteByOwnerName removes all records matching the pair and reports
	// how many were removed.
	DeleteByOwnerName(ctx context.Context, owner, name string) (int64, error)
}

// CredentialService implements create, list and conditional delete.
// It never sees a plaintext password and performs no verification: callers
// gate destructive calls themselves.
type CredentialService struct {
	repo  CredentialRepository
	newID func() string
}

// NewCredentialService constructs a CredentialService over repo.
func NewCredentialService(repo CredentialRepository) *CredentialService {
	return &CredentialService{repo: repo, newID: uuid.NewString}
}

// Create stores a new record. The password field must already be a digest.
func (s *CredentialService) Create(ctx context.Context, e models.NewEntry) (models.CredentialRecord, error) {
	if strings.TrimSpace(e.Owner) == "" || strings.TrimSpace(e.Name) == "" {
		return models.CredentialRecord{}, ErrInvalidEntry
	}
	if !hasher.IsDigest(e.Password) {
		return models.CredentialRecord{}, ErrPlaintextPassword
	}

	rec := models.CredentialRecord{
		ID:           s.newID(),
		Owner:        e.Owner,
		Name:         e.Name,
		Username:     e.Username,
		PasswordHash: e.Password,
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return models.CredentialRecord{}, fmt.Errorf("create: %w", err)
	}
	return rec, nil
}

// ListByOwner returns the records of owner. An owner without records is not
// an error and yields an empty slice.
func (s *CredentialService) ListByOwner(ctx context.Context, owner string) ([]models.CredentialRecord, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, ErrInvalidEntry
	}
	records, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	if records == nil {
		records = []models.CredentialRecord{}
	}
	return records, nil
}

// ConditionalDelete removes every record matching (owner, name) and returns
// the count. When several rows share the pair all of them go. Zero matches is
// ErrNotFound, distinct from a storage failure.
func (s *CredentialService) ConditionalDelete(ctx context.Context, owner, name string) (int64, error) {
	if strings.TrimSpace(owner) == "" || strings.TrimSpace(name) == "" {
		return 0, ErrInvalidEntry
	}
	n, err := s.repo.DeleteByOwnerName(ctx, owner, name)
	if err != nil {
		return 0, fmt.Errorf("delete: %w", err)
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	return n, nil
}
