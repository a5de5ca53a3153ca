// Package session keeps the device's auth state in the local database:
// access token, the logged-in user's id and type, and a device id generated
// once per installation. The token's expiry is read from the JWT payload
// without verifying the signature; verification is the server's job, the
// client only needs to know when a stored token is no longer worth sending.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/routesales/internal/api"
	"github.com/dmitrijs2005/routesales/internal/dbx"
	"github.com/dmitrijs2005/routesales/internal/failure"
	"github.com/dmitrijs2005/routesales/internal/jsonx"
)

const (
	keyAccessToken = "access_token"
	keyUserID      = "user_id"
	keyUserType    = "user_type"
	keyDeviceID    = "device_id"
)

// ErrNotLoggedIn is returned when an operation needs a stored session and
// none exists.
var ErrNotLoggedIn = errors.New("not logged in")

// Session is the stored auth state.
type Session struct {
	UserID   int64
	UserType string
	DeviceID string
}

// Store persists session values in the key-value session table.
type Store struct {
	db dbx.DBTX
}

func NewStore(db dbx.DBTX) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", failure.Database(fmt.Errorf("get session[%s]: %w", key, err))
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return failure.Database(fmt.Errorf("set session[%s]: %w", key, err))
	}
	return nil
}

// Clear wipes everything except the device id, which identifies the
// installation rather than the user.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE key <> ?`, keyDeviceID)
	if err != nil {
		return failure.Database(fmt.Errorf("clear session: %w", err))
	}
	return nil
}

// Remote is the part of the API client the manager uses.
type Remote interface {
	Post(ctx context.Context, path string, body any) (*api.Envelope, error)
}

// Manager is the auth surface for the CLI. It satisfies api.TokenSource so
// the same value can be handed to the API client.
type Manager struct {
	db     *sql.DB
	store  *Store
	remote Remote
}

func NewManager(db *sql.DB, remote Remote) *Manager {
	return &Manager{db: db, store: NewStore(db), remote: remote}
}

// DeviceID returns the installation's device id, generating and persisting
// one on first use.
func (m *Manager) DeviceID(ctx context.Context) (string, error) {
	id, err := m.store.Get(ctx, keyDeviceID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	id = uuid.NewString()
	if err := m.store.Set(ctx, keyDeviceID, id); err != nil {
		return "", err
	}
	return id, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	DeviceID string `json:"device_token"`
}

type loginResponse struct {
	Token    *jsonx.String `json:"token"`
	UserID   *jsonx.Int64  `json:"user_id"`
	UserType *jsonx.String `json:"user_type"`
}

// Login authenticates against the server and persists the returned token
// and identity in one transaction.
func (m *Manager) Login(ctx context.Context, username, password string) (Session, error) {
	deviceID, err := m.DeviceID(ctx)
	if err != nil {
		return Session{}, err
	}

	env, err := m.remote.Post(ctx, "login", loginRequest{
		Username: username,
		Password: password,
		DeviceID: deviceID,
	})
	if err != nil {
		return Session{}, err
	}
	if err := env.Err(); err != nil {
		return Session{}, err
	}

	resp, ok := api.DecodeOne[loginResponse](env)
	if !ok {
		return Session{}, failure.Unknownf("login response carried no data")
	}
	if resp.Token == nil || string(*resp.Token) == "" {
		return Session{}, failure.Unknownf("login response carried no token")
	}

	sess := Session{DeviceID: deviceID}
	if resp.UserID != nil {
		sess.UserID = int64(*resp.UserID)
	}
	if resp.UserType != nil {
		sess.UserType = string(*resp.UserType)
	}

	err = dbx.WithTx(ctx, m.db, func(ctx context.Context, tx dbx.DBTX) error {
		st := NewStore(tx)
		if err := st.Set(ctx, keyAccessToken, string(*resp.Token)); err != nil {
			return err
		}
		if err := st.Set(ctx, keyUserID, strconv.FormatInt(sess.UserID, 10)); err != nil {
			return err
		}
		return st.Set(ctx, keyUserType, sess.UserType)
	})
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Logout drops the stored token and identity.
func (m *Manager) Logout(ctx context.Context) error {
	return m.store.Clear(ctx)
}

// Current returns the stored session, or ErrNotLoggedIn when no token is
// stored.
func (m *Manager) Current(ctx context.Context) (Session, error) {
	token, err := m.store.Get(ctx, keyAccessToken)
	if err != nil {
		return Session{}, err
	}
	if token == "" {
		return Session{}, ErrNotLoggedIn
	}

	var sess Session
	if sess.DeviceID, err = m.store.Get(ctx, keyDeviceID); err != nil {
		return Session{}, err
	}
	if sess.UserType, err = m.store.Get(ctx, keyUserType); err != nil {
		return Session{}, err
	}
	rawID, err := m.store.Get(ctx, keyUserID)
	if err != nil {
		return Session{}, err
	}
	sess.UserID, _ = strconv.ParseInt(rawID, 10, 64)
	return sess, nil
}

// AccessToken implements api.TokenSource. Expired tokens are treated as
// absent so requests fail with the server's "unauthorized" instead of a
// token the server would reject anyway.
func (m *Manager) AccessToken(ctx context.Context) string {
	token, err := m.store.Get(ctx, keyAccessToken)
	if err != nil || token == "" {
		return ""
	}
	if exp, err := TokenExpiry(token); err == nil && !exp.IsZero() && exp.Before(time.Now()) {
		return ""
	}
	return token
}

// Valid reports whether a usable token is stored.
func (m *Manager) Valid(ctx context.Context) bool {
	return m.AccessToken(ctx) != ""
}

// TokenExpiry reads the exp claim from a JWT without verifying the
// signature. A token without an exp claim yields the zero time and no error.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, failure.Unknown(fmt.Errorf("parse token: %w", err))
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, failure.Unknown(fmt.Errorf("token exp claim: %w", err))
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}
