package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"

	"github.com/personascope/personascope/pkg/domain"
)

// ErrNotFound indicates no archived persona matched the query
var ErrNotFound = errors.New("persona not found")

// PersonaRepository handles persona archive operations
type PersonaRepository struct {
	db *sqlx.DB
}

// NewPersonaRepository creates a new persona repository
func NewPersonaRepository(db *sqlx.DB) *PersonaRepository {
	return &PersonaRepository{db: db}
}

// personaSQL represents an archived persona row
type personaSQL struct {
	ID         int64      `db:"id"`
	Username   string     `db:"username"`
	ProfileURL string     `db:"profile_url"`
	Persona    personaDoc `db:"persona_json"`
	ReportPath string     `db:"report_path"`
	ItemCount  int        `db:"item_count"`
	Model      string     `db:"model"`
	CreatedAt  time.Time  `db:"created_at"`
}

// personaDoc stores the persona as a JSON document column
type personaDoc domain.Persona

// Value implements driver.Valuer for database storage
func (p personaDoc) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for database retrieval
func (p *personaDoc) Scan(value interface{}) error {
	if value == nil {
		*p = personaDoc{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported persona_json type %T", value)
	}

	return json.Unmarshal(data, p)
}

// Save archives a generated persona, retrying on sqlite lock contention
func (r *PersonaRepository) Save(ctx context.Context, rec *domain.PersonaRecord) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		row := &personaSQL{
			Username:   rec.Username,
			ProfileURL: rec.ProfileURL,
			Persona:    personaDoc(rec.Persona),
			ReportPath: rec.ReportPath,
			ItemCount:  rec.ItemCount,
			Model:      rec.Model,
		}

		query := `
			INSERT INTO personas (username, profile_url, persona_json, report_path, item_count, model)
			VALUES (:username, :profile_url, :persona_json, :report_path, :item_count, :model)
		`
		result, err := r.db.NamedExecContext(ctx, query, row)
		if err != nil {
			if isLockError(err) {
				return err // retryable
			}
			return &criticalError{err: fmt.Errorf("save persona: %w", err)}
		}

		id, err := result.LastInsertId()
		if err != nil {
			return &criticalError{err: fmt.Errorf("get persona id: %w", err)}
		}
		rec.ID = id
		return nil
	})
}

// List returns archived personas, newest first
func (r *PersonaRepository) List(ctx context.Context, limit int) ([]domain.PersonaRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []personaSQL
	query := `SELECT * FROM personas ORDER BY created_at DESC, id DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("list personas: %w", err)
	}

	records := make([]domain.PersonaRecord, len(rows))
	for i, row := range rows {
		records[i] = toDomainRecord(&row)
	}
	return records, nil
}

// GetLatest returns the most recent persona archived for a username
func (r *PersonaRepository) GetLatest(ctx context.Context, username string) (*domain.PersonaRecord, error) {
	var row personaSQL
	query := `SELECT * FROM personas WHERE username = ? ORDER BY created_at DESC, id DESC LIMIT 1`
	err := r.db.GetContext(ctx, &row, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get persona for %s: %w", username, err)
	}

	rec := toDomainRecord(&row)
	return &rec, nil
}

func toDomainRecord(row *personaSQL) domain.PersonaRecord {
	return domain.PersonaRecord{
		ID:         row.ID,
		Username:   row.Username,
		ProfileURL: row.ProfileURL,
		Persona:    domain.Persona(row.Persona),
		ReportPath: row.ReportPath,
		ItemCount:  row.ItemCount,
		Model:      row.Model,
		CreatedAt:  row.CreatedAt,
	}
}
