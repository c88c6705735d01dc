package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Profile is a per-gesture detector tuning override. Zero-valued numeric
// fields mean "keep the built-in default" for that parameter.
type Profile struct {
	ID                   string
	Name                 string
	Gesture              string
	Threshold            float64
	ThresholdMultiplier  float64
	MinDurationMs        int64
	MaxDurationMs        int64
	DoubleSignalWindowMs int64
	CooldownMs           int64
	HistorySize          int
	Enabled              bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ProfileRepository provides CRUD operations for tuning profiles.
type ProfileRepository struct {
	db *sql.DB
}

// Profiles returns the profile repository for this store.
func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

const profileColumns = `id, name, gesture, threshold, threshold_multiplier,
	min_duration_ms, max_duration_ms, double_signal_window_ms, cooldown_ms,
	history_size, enabled, created_at, updated_at`

// Create inserts a new profile into the database.
func (r *ProfileRepository) Create(p *Profile) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO profiles (`+profileColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Gesture, p.Threshold, p.ThresholdMultiplier,
		p.MinDurationMs, p.MaxDurationMs, p.DoubleSignalWindowMs, p.CooldownMs,
		p.HistorySize, p.Enabled, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetByID retrieves a profile by its ID.
func (r *ProfileRepository) GetByID(id string) (*Profile, error) {
	row := r.db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	return scanProfile(row)
}

// GetByName retrieves a profile by its name.
func (r *ProfileRepository) GetByName(name string) (*Profile, error) {
	row := r.db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE name = ?`, name)
	return scanProfile(row)
}

// List retrieves all profiles ordered by creation time, newest first.
func (r *ProfileRepository) List() ([]*Profile, error) {
	rows, err := r.db.Query(`SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p := &Profile{}
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Gesture, &p.Threshold, &p.ThresholdMultiplier,
			&p.MinDurationMs, &p.MaxDurationMs, &p.DoubleSignalWindowMs, &p.CooldownMs,
			&p.HistorySize, &p.Enabled, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

// ListEnabledByGesture retrieves enabled profiles for a gesture type,
// newest first. The pipeline applies the newest one on startup.
func (r *ProfileRepository) ListEnabledByGesture(gesture string) ([]*Profile, error) {
	rows, err := r.db.Query(
		`SELECT `+profileColumns+` FROM profiles
		 WHERE gesture = ? AND enabled = 1
		 ORDER BY created_at DESC`,
		gesture,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p := &Profile{}
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Gesture, &p.Threshold, &p.ThresholdMultiplier,
			&p.MinDurationMs, &p.MaxDurationMs, &p.DoubleSignalWindowMs, &p.CooldownMs,
			&p.HistorySize, &p.Enabled, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

// Update updates an existing profile in the database.
func (r *ProfileRepository) Update(p *Profile) error {
	p.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE profiles SET name = ?, gesture = ?, threshold = ?,
			threshold_multiplier = ?, min_duration_ms = ?, max_duration_ms = ?,
			double_signal_window_ms = ?, cooldown_ms = ?, history_size = ?,
			enabled = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.Gesture, p.Threshold, p.ThresholdMultiplier,
		p.MinDurationMs, p.MaxDurationMs, p.DoubleSignalWindowMs, p.CooldownMs,
		p.HistorySize, p.Enabled, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a profile from the database by its ID.
func (r *ProfileRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func scanProfile(row *sql.Row) (*Profile, error) {
	p := &Profile{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Gesture, &p.Threshold, &p.ThresholdMultiplier,
		&p.MinDurationMs, &p.MaxDurationMs, &p.DoubleSignalWindowMs, &p.CooldownMs,
		&p.HistorySize, &p.Enabled, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}
