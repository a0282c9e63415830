package maintenance

import (
	"database/sql"
	"errors"
)

var ErrNotFound = errors.New("setting not found")

// Settings is the storefront-wide switch. Message is shown to shoppers while
// the store is down.
type Settings struct {
	Enabled   bool   `json:"enabled"`
	Message   string `json:"message,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

type Repository interface {
	Get() (Settings, error)
	Set(s Settings) error
}

// PostgresRepository keeps the switch in the settings key/value table under a
// fixed key.
type PostgresRepository struct {
	db *sql.DB
}

const settingsKey = "maintenance_mode"

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get() (Settings, error) {
	var s Settings
	err := r.db.QueryRow(`SELECT enabled, message, updated_at FROM settings WHERE key = $1`, settingsKey).
		Scan(&s.Enabled, &s.Message, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		// never configured means the store is open
		return Settings{}, nil
	}
	return s, err
}

func (r *PostgresRepository) Set(s Settings) error {
	_, err := r.db.Exec(`INSERT INTO settings (key, enabled, message, updated_at) VALUES ($1, $2, $3, $4)
        ON CONFLICT (key) DO UPDATE SET enabled = $2, message = $3, updated_at = $4`,
		settingsKey, s.Enabled, s.Message, s.UpdatedAt)
	return err
}
