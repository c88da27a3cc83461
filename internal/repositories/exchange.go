package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tokenrelay/internal/models"
	"github.com/desertthunder/tokenrelay/internal/shared"
)

// DefaultListLimit caps [ExchangeRepository.List] when no limit is given.
const DefaultListLimit = 50

const selectExchanges = `
	SELECT id, request_id, outcome, error_kind, provider_code, expires_in, duration_ms, created_at
	FROM exchanges
`

var _ models.Repository[*models.ExchangeRecord] = (*ExchangeRepository)(nil)

// ExchangeRepository implements [models.Repository] for [models.ExchangeRecord] persistence.
type ExchangeRepository struct {
	db *sql.DB
}

// NewExchangeRepository creates a new [ExchangeRepository] with the given database connection
func NewExchangeRepository(db *sql.DB) *ExchangeRepository {
	return &ExchangeRepository{db: db}
}

// Create inserts a record, generating its ID when it has none
func (r *ExchangeRepository) Create(record *models.ExchangeRecord) error {
	return r.Record(context.Background(), record)
}

// Record persists one exchange attempt. It satisfies the exchange service's Recorder interface.
func (r *ExchangeRepository) Record(ctx context.Context, record *models.ExchangeRecord) error {
	if record.ID() == "" {
		record.SetID(shared.GenerateID())
	}

	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO exchanges (
			id, request_id, outcome, error_kind, provider_code, expires_in, duration_ms, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID(),
		record.RequestID(),
		string(record.Outcome()),
		record.ErrorKind(),
		record.ProviderCode(),
		record.ExpiresIn(),
		record.Duration().Milliseconds(),
		record.CreatedAt().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert exchange record: %w", err)
	}

	return nil
}

// Get retrieves a record by ID
func (r *ExchangeRepository) Get(id string) (*models.ExchangeRecord, error) {
	record, err := scanRecord(r.db.QueryRow(selectExchanges+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: exchange %s", shared.ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// List retrieves the most recent records matching the given criteria, newest first.
//
// Supported criteria: "outcome" (string), "error_kind" (string), "since" ([time.Time]) and "limit" (int).
func (r *ExchangeRepository) List(criteria map[string]any) ([]*models.ExchangeRecord, error) {
	query := selectExchanges + " WHERE 1 = 1"
	args := []any{}

	if outcome, ok := criteria["outcome"].(string); ok && outcome != "" {
		query += " AND outcome = ?"
		args = append(args, outcome)
	}

	if kind, ok := criteria["error_kind"].(string); ok && kind != "" {
		query += " AND error_kind = ?"
		args = append(args, kind)
	}

	if since, ok := criteria["since"].(time.Time); ok && !since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, since.UTC())
	}

	limit, ok := criteria["limit"].(int)
	if !ok || limit <= 0 {
		limit = DefaultListLimit
	}

	query += " ORDER BY created_at DESC, id LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	var records []*models.ExchangeRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Stats counts records by outcome and by error kind.
func (r *ExchangeRepository) Stats() (*models.ExchangeStats, error) {
	rows, err := r.db.Query(`
		SELECT outcome, error_kind, COUNT(*)
		FROM exchanges
		GROUP BY outcome, error_kind
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange stats: %w", err)
	}
	defer rows.Close()

	stats := &models.ExchangeStats{ByKind: map[string]int{}}
	for rows.Next() {
		var (
			outcome string
			kind    string
			count   int
		)
		if err := rows.Scan(&outcome, &kind, &count); err != nil {
			return nil, fmt.Errorf("failed to scan exchange stats: %w", err)
		}

		stats.Total += count
		switch models.Outcome(outcome) {
		case models.OutcomeSuccess:
			stats.Succeeded += count
		case models.OutcomeFailure:
			stats.Failed += count
			stats.ByKind[kind] += count
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return stats, nil
}

// Prune deletes records created before the given time and returns how many were removed.
func (r *ExchangeRepository) Prune(before time.Time) (int64, error) {
	result, err := r.db.Exec("DELETE FROM exchanges WHERE created_at < ?", before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune exchanges: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRecord scans a single row from [sql.Row] or [sql.Rows] into a [models.ExchangeRecord]
func scanRecord(row scanner) (*models.ExchangeRecord, error) {
	var (
		id           string
		requestID    string
		outcome      string
		errorKind    string
		providerCode int
		expiresIn    int64
		durationMS   int64
		createdAt    time.Time
	)

	err := row.Scan(&id, &requestID, &outcome, &errorKind, &providerCode, &expiresIn, &durationMS, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan exchange record: %w", err)
	}

	record := models.NewExchangeRecord(requestID, models.Outcome(outcome), createdAt)
	record.SetID(id)
	record.SetExpiresIn(expiresIn)
	record.SetDuration(time.Duration(durationMS) * time.Millisecond)
	if errorKind != "" {
		record.SetFailure(errorKind, providerCode)
	}

	return record, nil
}
