// package models defines the data model for the token relay's audit trail
package models

import (
	"errors"
	"fmt"
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Outcome is the final state of one token exchange attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// ExchangeRecord is one audited token exchange attempt.
//
// Authorization codes and tokens are never part of a record.
type ExchangeRecord struct {
	id           string
	requestID    string
	outcome      Outcome
	errorKind    string
	providerCode int
	expiresIn    int64
	duration     time.Duration
	createdAt    time.Time
}

// NewExchangeRecord creates a record for an attempt that finished at createdAt.
func NewExchangeRecord(requestID string, outcome Outcome, createdAt time.Time) *ExchangeRecord {
	return &ExchangeRecord{
		requestID: requestID,
		outcome:   outcome,
		createdAt: createdAt.UTC(),
	}
}

func (r *ExchangeRecord) ID() string { return r.id }
func (r *ExchangeRecord) RequestID() string { return r.requestID }
func (r *ExchangeRecord) Outcome() Outcome { return r.outcome }
func (r *ExchangeRecord) ErrorKind() string { return r.errorKind }
func (r *ExchangeRecord) ProviderCode() int { return r.providerCode }
func (r *ExchangeRecord) ExpiresIn() int64 { return r.expiresIn }
func (r *ExchangeRecord) Duration() time.Duration { return r.duration }
func (r *ExchangeRecord) CreatedAt() time.Time { return r.createdAt }

func (r *ExchangeRecord) SetID(id string) { r.id = id }
func (r *ExchangeRecord) SetExpiresIn(seconds int64) { r.expiresIn = seconds }
func (r *ExchangeRecord) SetDuration(d time.Duration) { r.duration = d }
func (r *ExchangeRecord) SetFailure(kind string, code int) {
	r.errorKind = kind
	r.providerCode = code
}

// Validate checks the record before it is persisted.
func (r *ExchangeRecord) Validate() error {
	if r.id == "" {
		return errors.New("record id is required")
	}
	switch r.outcome {
	case OutcomeSuccess:
		if r.errorKind != "" {
			return fmt.Errorf("successful record must not carry error kind %q", r.errorKind)
		}
	case OutcomeFailure:
		if r.errorKind == "" {
			return errors.New("failed record requires an error kind")
		}
	default:
		return fmt.Errorf("unknown outcome %q", r.outcome)
	}
	if r.duration < 0 {
		return errors.New("duration must not be negative")
	}
	if r.createdAt.IsZero() {
		return errors.New("created_at is required")
	}
	return nil
}

// ExchangeStats aggregates audit records by outcome.
type ExchangeStats struct {
	Total     int
	Succeeded int
	Failed    int
	ByKind    map[string]int
}
