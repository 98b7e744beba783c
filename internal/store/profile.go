package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidUsername is returned for an empty username.
var ErrInvalidUsername = errors.New("invalid username")

// Profile is a named player on this installation. Its ID keys the stats record.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfileRepository provides CRUD operations for profiles.
type ProfileRepository struct {
	db *sql.DB
}

// Profiles returns the profile repository for this store.
func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

// Create inserts a new profile. An empty ID is filled with a new UUID.
func (r *ProfileRepository) Create(p *Profile) error {
	p.Username = strings.TrimSpace(p.Username)
	if p.Username == "" {
		return ErrInvalidUsername
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO profiles (id, username, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Username, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create profile %q: %w", p.Username, err)
	}
	return nil
}

// GetByID retrieves a profile by its ID.
func (r *ProfileRepository) GetByID(id string) (*Profile, error) {
	return r.get(`SELECT id, username, created_at, updated_at FROM profiles WHERE id = ?`, id)
}

// GetByUsername retrieves a profile by its username.
func (r *ProfileRepository) GetByUsername(username string) (*Profile, error) {
	return r.get(`SELECT id, username, created_at, updated_at FROM profiles WHERE username = ?`,
		strings.TrimSpace(username))
}

func (r *ProfileRepository) get(query string, arg string) (*Profile, error) {
	p := &Profile{}
	err := r.db.QueryRow(query, arg).Scan(&p.ID, &p.Username, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetOrCreate returns the profile named username, creating it when missing.
func (r *ProfileRepository) GetOrCreate(username string) (*Profile, error) {
	p, err := r.GetByUsername(username)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	p = &Profile{Username: username}
	if err := r.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Rename changes the username of the profile with the given ID.
func (r *ProfileRepository) Rename(id, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrInvalidUsername
	}

	result, err := r.db.Exec(
		`UPDATE profiles SET username = ?, updated_at = ? WHERE id = ?`,
		username, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("rename profile: %w", err)
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

// List retrieves all profiles ordered by username.
func (r *ProfileRepository) List() ([]*Profile, error) {
	rows, err := r.db.Query(`SELECT id, username, created_at, updated_at FROM profiles ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p := &Profile{}
		if err := rows.Scan(&p.ID, &p.Username, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}
