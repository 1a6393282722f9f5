package repositories

import (
	"database/sql"
	"errors"

	"github.com/iabigrejinha/iab_finance_backend/config"
	"github.com/iabigrejinha/iab_finance_backend/models"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a session row. Token collisions are practically
// impossible but INSERT OR REPLACE keeps the operation idempotent anyway.
func (r *SessionRepository) Create(session *models.Session) error {
	_, err := r.db.Exec(
		"INSERT OR REPLACE INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)",
		session.Token, session.UserID, config.FormatTime(session.ExpiresAt))
	return err
}

// GetValid returns the session for token if it has not expired.
// Expired or unknown tokens both come back as ErrNotFound; callers cannot
// distinguish the two, and must not.
func (r *SessionRepository) GetValid(token string) (*models.Session, error) {
	var s models.Session
	err := r.db.QueryRow(`
		SELECT token, user_id, expires_at FROM sessions
		WHERE token = ? AND expires_at > CURRENT_TIMESTAMP`,
		token).Scan(&s.Token, &s.UserID, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes a session by token. Deleting an absent token is not an
// error so logout stays idempotent.
func (r *SessionRepository) Delete(token string) error {
	_, err := r.db.Exec("DELETE FROM sessions WHERE token = ?", token)
	return err
}

// DeleteByUser removes every session belonging to the user.
func (r *SessionRepository) DeleteByUser(userID string) error {
	_, err := r.db.Exec("DELETE FROM sessions WHERE user_id = ?", userID)
	return err
}

// DeleteExpired clears out rows whose expiry has passed.
func (r *SessionRepository) DeleteExpired() error {
	_, err := r.db.Exec("DELETE FROM sessions WHERE expires_at <= CURRENT_TIMESTAMP")
	return err
}
