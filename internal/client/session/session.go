// Package session drives a single operator's list, select and verify cycle
// against the vault. Delete calls are only ever issued after a successful
// local verification of the selected record's digest.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/GophVault/internal/client/transport"
	"github.com/atinyakov/GophVault/internal/hasher"
	"github.com/atinyakov/GophVault/internal/models"
)

// State is the position of a Session in its cycle.
type State int

const (
	Idle State = iota
	Listed
	Selected
	Verified
	Rejected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Listed:
		return "listed"
	case Selected:
		return "selected"
	case Verified:
		return "verified"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Intent is what the operator wants to do with the selected record.
type Intent int

const (
	// Inspect only checks the password.
	Inspect Intent = iota + 1
	// Delete removes the record once the password is verified.
	Delete
)

// Selection picks a listed record by its 1-based position.
type Selection struct {
	Intent Intent
	Index  int
}

// Outcome is the result of a completed verification.
type Outcome int

const (
	Correct Outcome = iota + 1
	Incorrect
	Deleted
	NotFound
)

var (
	ErrEmptyOwner       = errors.New("owner must not be empty")
	ErrInvalidSelection = errors.New("invalid selection")
	ErrNoDigest         = errors.New("selected entry has no stored password hash")
	// ErrWrongState is returned when an operation is called out of order.
	ErrWrongState = errors.New("operation not allowed in current state")
)

// API is the subset of the vault transport a Session needs.
type API interface {
	List(ctx context.Context, owner string) ([]models.CredentialRecord, error)
	Delete(ctx context.Context, owner, name string) (transport.DeleteStatus, error)
}

// Session holds the state of one operator. It is not safe for concurrent use.
type Session struct {
	api     API
	state   State
	records []models.CredentialRecord
	attempt *verificationAttempt
}

// New returns an idle Session calling api.
func New(api API) *Session {
	return &Session{api: api}
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Records returns the last listed records.
func (s *Session) Records() []models.CredentialRecord {
	return s.records
}

// List fetches the records of owner. On failure the session stays Idle.
func (s *Session) List(ctx context.Context, owner string) ([]models.CredentialRecord, error) {
	s.Reset()
	if owner == "" {
		return nil, ErrEmptyOwner
	}

	records, err := s.api.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.CredentialRecord{}
	}
	s.records = records
	s.state = Listed
	return records, nil
}

// Select chooses one of the listed records. An out-of-range index or a
// record without digest returns the session to Idle.
func (s *Session) Select(sel Selection) (models.CredentialRecord, error) {
	if s.state != Listed {
		return models.CredentialRecord{}, ErrWrongState
	}
	if sel.Intent != Inspect && sel.Intent != Delete {
		s.Reset()
		return models.CredentialRecord{}, ErrInvalidSelection
	}
	if sel.Index < 1 || sel.Index > len(s.records) {
		s.Reset()
		return models.CredentialRecord{}, ErrInvalidSelection
	}

	rec := s.records[sel.Index-1]
	if rec.PasswordHash == "" {
		s.Reset()
		return models.CredentialRecord{}, ErrNoDigest
	}

	s.attempt = &verificationAttempt{record: rec, intent: sel.Intent}
	s.state = Selected
	return rec, nil
}

// Duplicates returns how many listed records share the selected record's
// owner and name, i.e. how many rows a delete would remove.
func (s *Session) Duplicates() int {
	if s.attempt == nil {
		return 0
	}
	n := 0
	for _, r := range s.records {
		if r.Owner == s.attempt.record.Owner && r.Name == s.attempt.record.Name {
			n++
		}
	}
	return n
}

// Verify checks plaintext against the selected record and, for a delete
// intent, removes it on success. The session is Idle afterwards whatever
// the result.
func (s *Session) Verify(ctx context.Context, plaintext string) (Outcome, error) {
	if s.state != Selected || s.attempt == nil {
		return 0, ErrWrongState
	}
	attempt := s.attempt
	attempt.plaintext = plaintext
	defer s.Reset()

	ok, err := hasher.Verify(attempt.record.PasswordHash, attempt.plaintext)
	if err != nil {
		return 0, fmt.Errorf("record unreadable: %w", err)
	}
	if !ok {
		s.state = Rejected
		return Incorrect, nil
	}
	s.state = Verified

	if attempt.intent == Inspect {
		return Correct, nil
	}

	status, err := s.api.Delete(ctx, attempt.record.Owner, attempt.record.Name)
	if err != nil {
		return 0, err
	}
	if status == transport.NotFound {
		return NotFound, nil
	}
	return Deleted, nil
}

// Reset abandons the current cycle.
func (s *Session) Reset() {
	if s.attempt != nil {
		s.attempt.plaintext = ""
	}
	s.attempt = nil
	s.records = nil
	s.state = Idle
}

// verificationAttempt lives from Select to the end of Verify.
type verificationAttempt struct {
	record    models.CredentialRecord
	intent    Intent
	plaintext string
}
