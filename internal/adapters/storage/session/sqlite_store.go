package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/record"
	domain "gymdesk/internal/domain/session"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store on sqlite with sealed backend tokens.
type SQLiteStore struct {
	db     storage.SQLDB
	sealer *Sealer
	now    func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a session store.
func NewSQLiteStore(db storage.SQLDB, sealer *Sealer) *SQLiteStore {
	return &SQLiteStore{db: db, sealer: sealer, now: time.Now}
}

// Create persists s under a fresh cookie token.
func (s *SQLiteStore) Create(ctx context.Context, sess domain.Session) (string, domain.Session, error) {
	if err := sess.Validate(); err != nil {
		return "", domain.Session{}, err
	}
	token, err := NewCookieToken()
	if err != nil {
		return "", domain.Session{}, fmt.Errorf("session token: %w", err)
	}
	sealed, err := s.sealer.Seal(sess.BackendToken)
	if err != nil {
		return "", domain.Session{}, err
	}
	sess.Key = s.sealer.Key(token)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session (id_hash, sealed_token, user_id, user_name, user_email, user_phone, role, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.Key, sealed, sess.User.ID.String(), sess.User.Name, sess.User.Email, sess.User.Phone,
		sess.User.Role, sess.CreatedAt.UTC().Format(timeLayout), sess.ExpiresAt.UTC().Format(timeLayout))
	if err != nil {
		return "", domain.Session{}, fmt.Errorf("insert session: %w", err)
	}
	return token, sess, nil
}

// Get loads and unseals the session for token.
func (s *SQLiteStore) Get(ctx context.Context, token string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, domain.ErrNotFound
	}
	key := s.sealer.Key(token)
	var (
		sess                 domain.Session
		sealed               []byte
		userID               string
		createdAt, expiresAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT sealed_token, user_id, user_name, user_email, user_phone, role, created_at, expires_at
		 FROM session WHERE id_hash = ?`, key).
		Scan(&sealed, &userID, &sess.User.Name, &sess.User.Email, &sess.User.Phone, &sess.User.Role, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}
	sess.Key = key
	sess.User.ID = record.ID(userID)
	sess.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	sess.ExpiresAt, _ = time.Parse(timeLayout, expiresAt)
	if sess.IsExpired(s.now()) {
		s.db.ExecContext(ctx, `DELETE FROM session WHERE id_hash = ?`, key)
		return domain.Session{}, domain.ErrExpired
	}
	sess.BackendToken, err = s.sealer.Open(sealed)
	if err != nil {
		// Secret rotated: the row is useless.
		s.db.ExecContext(ctx, `DELETE FROM session WHERE id_hash = ?`, key)
		return domain.Session{}, domain.ErrNotFound
	}
	if !account.IsValidRole(sess.User.Role) {
		return domain.Session{}, domain.ErrMissingRole
	}
	return sess, nil
}

// Delete removes the session for token.
func (s *SQLiteStore) Delete(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE id_hash = ?`, s.sealer.Key(token))
	return err
}

// DeleteExpired removes sessions whose expiry is at or before now.
func (s *SQLiteStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE expires_at <= ?`, now.UTC().Format(timeLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
