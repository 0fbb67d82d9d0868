package database

import (
	"database/sql"
	"time"

	"github.com/khrees2412/pathweiz/pkg/models"
)

// Session operations

// SaveSession replaces the persisted session; there is at most one
func (s *Store) SaveSession(session *models.Session) error {
	query := `INSERT OR REPLACE INTO auth_sessions (id, access_token, refresh_token, expires_at,
			  user_id, email, username, updated_at) VALUES (1, ?, ?, ?, ?, ?, ?, ?)`
	var expiresAt sql.NullTime
	if !session.ExpiresAt.IsZero() {
		expiresAt = sql.NullTime{Time: session.ExpiresAt.UTC(), Valid: true}
	}
	_, err := s.DB.Exec(query, session.AccessToken, session.RefreshToken, expiresAt,
		session.User.ID, session.User.Email, session.User.Username, time.Now())
	return err
}

// LoadSession returns the persisted session, or nil if nobody is signed in
func (s *Store) LoadSession() (*models.Session, error) {
	query := `SELECT access_token, refresh_token, expires_at, user_id, email, username
			  FROM auth_sessions WHERE id = 1`
	session := &models.Session{}
	var refresh, userID, email, username sql.NullString
	var expiresAt sql.NullTime
	err := s.DB.QueryRow(query).Scan(&session.AccessToken, &refresh, &expiresAt,
		&userID, &email, &username)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	session.RefreshToken = refresh.String
	if expiresAt.Valid {
		session.ExpiresAt = expiresAt.Time
	}
	session.User = models.User{ID: userID.String, Email: email.String, Username: username.String}
	return session, nil
}

// DeleteSession forgets the persisted session
func (s *Store) DeleteSession() error {
	_, err := s.DB.Exec(`DELETE FROM auth_sessions`)
	return err
}

// Survey draft operations

// SaveDraft stores the user's unfinished survey
func (s *Store) SaveDraft(draft *models.SurveyDraft) error {
	query := `INSERT OR REPLACE INTO survey_drafts (user_id, answers, current_index, updated_at)
			  VALUES (?, ?, ?, ?)`
	_, err := s.DB.Exec(query, draft.UserID, string(draft.Answers), draft.CurrentIndex, time.Now())
	return err
}

// LoadDraft returns the user's unfinished survey, or nil if there is none
func (s *Store) LoadDraft(userID string) (*models.SurveyDraft, error) {
	query := `SELECT user_id, answers, current_index, updated_at FROM survey_drafts WHERE user_id = ?`
	draft := &models.SurveyDraft{}
	var answers string
	err := s.DB.QueryRow(query, userID).Scan(&draft.UserID, &answers, &draft.CurrentIndex, &draft.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	draft.Answers = []byte(answers)
	return draft, nil
}

// DeleteDraft removes the user's unfinished survey
func (s *Store) DeleteDraft(userID string) error {
	_, err := s.DB.Exec(`DELETE FROM survey_drafts WHERE user_id = ?`, userID)
	return err
}
