package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"agrimarket-backend/internal/models"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// Session ties a storefront token to the marketplace API token kept on the server
type Session struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Role          string     `json:"role"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	UpstreamToken string     `json:"-"`
	CreatedAt     time.Time  `json:"createdAt"`
	ExpiresAt     time.Time  `json:"expiresAt"`
	RevokedAt     *time.Time `json:"revokedAt,omitempty"`
}

// User returns the session user summary
func (s *Session) User() models.SessionUser {
	return models.SessionUser{ID: models.FlexibleID(s.UserID), Name: s.Name, Email: s.Email, Role: s.Role}
}

// SessionService stores sessions in the database
type SessionService struct {
	db  *sql.DB
	now func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(db *sql.DB) *SessionService {
	return &SessionService{db: db, now: time.Now}
}

// Create stores a session for user valid for ttl
func (s *SessionService) Create(user models.SessionUser, role models.UserRole, upstreamToken string, ttl time.Duration) (*Session, error) {
	now := s.now().UTC()
	session := &Session{
		ID:            uuid.New().String(),
		UserID:        user.ID.String(),
		Role:          string(role),
		Name:          user.Name,
		Email:         user.Email,
		UpstreamToken: upstreamToken,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}

	query := `
		INSERT INTO sessions (id, user_id, role, name, email, upstream_token, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		session.ID, session.UserID, session.Role, session.Name, session.Email,
		session.UpstreamToken, session.CreatedAt, session.ExpiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// Get returns an active session
func (s *SessionService) Get(id string) (*Session, error) {
	query := `
		SELECT id, user_id, role, name, email, upstream_token, created_at, expires_at, revoked_at
		FROM sessions WHERE id = ?
	`
	var session Session
	var revokedAt sql.NullTime
	err := s.db.QueryRow(query, id).Scan(
		&session.ID, &session.UserID, &session.Role, &session.Name, &session.Email,
		&session.UpstreamToken, &session.CreatedAt, &session.ExpiresAt, &revokedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if revokedAt.Valid || !s.now().Before(session.ExpiresAt) {
		return nil, ErrSessionNotFound
	}

	return &session, nil
}

// Revoke ends a session
func (s *SessionService) Revoke(id string) error {
	result, err := s.db.Exec("UPDATE sessions SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL", s.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check revoked session: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteExpired removes sessions that expired or were revoked before cutoff
func (s *SessionService) DeleteExpired(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec("DELETE FROM sessions WHERE expires_at < ? OR revoked_at < ?", cutoff.UTC(), cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}
