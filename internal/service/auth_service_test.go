package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"sync"
	"testing"
	"time"

	"silo_scanner/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const shiftKey = "yard-shift-key"

// operatorStore is an in-memory repository.Authorization.
type operatorStore struct {
	mu     sync.Mutex
	byName map[string]models.User
	err    error
}

func newOperatorStore() *operatorStore {
	return &operatorStore{byName: make(map[string]models.User)}
}

func (s *operatorStore) Create(_ context.Context, username, hash string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	if _, dup := s.byName[username]; dup {
		return 0, errors.New("UNIQUE constraint failed: users.username")
	}
	u := models.User{ID: len(s.byName) + 1, Username: username, PasswordHash: hash}
	s.byName[username] = u
	return u.ID, nil
}

func (s *operatorStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.byName[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func signedClaims(t *testing.T, method jwt.SigningMethod, key any, userID int, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
		},
		UserID: userID,
	}).SignedString(key)
	require.NoError(t, err)
	return tok
}

func TestAuthService_OperatorSignUpThenSignIn(t *testing.T) {
	ctx := context.Background()
	store := newOperatorStore()
	svc := NewAuthService(store, AuthConfig{SigningKey: shiftKey, TokenTTL: time.Hour})

	nightID, err := svc.SignUp(ctx, "night-shift", "silo-40-hot")
	require.NoError(t, err)
	dayID, err := svc.SignUp(ctx, "day-shift", "grain-dryer")
	require.NoError(t, err)
	require.NotEqual(t, nightID, dayID)

	stored := store.byName["night-shift"]
	require.NotEqual(t, "silo-40-hot", stored.PasswordHash)
	require.NoError(t, verifyPassword(stored.PasswordHash, "silo-40-hot"))

	token, err := svc.GenerateToken(ctx, "night-shift", "silo-40-hot")
	require.NoError(t, err)
	uid, err := svc.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, nightID, uid)

	_, err = svc.SignUp(ctx, "night-shift", "again")
	require.Error(t, err, "operator names are unique")
}

func TestAuthService_SignUpRejectsBlankPassword(t *testing.T) {
	store := newOperatorStore()
	svc := NewAuthService(store, AuthConfig{SigningKey: shiftKey})

	for _, pw := range []string{"", "   ", "\t\n"} {
		_, err := svc.SignUp(context.Background(), "operator", pw)
		require.Error(t, err, "password %q", pw)
	}
	require.Empty(t, store.byName)
}

func TestAuthService_SignInFailures(t *testing.T) {
	ctx := context.Background()
	store := newOperatorStore()
	svc := NewAuthService(store, AuthConfig{SigningKey: shiftKey})
	_, err := svc.SignUp(ctx, "day-shift", "grain-dryer")
	require.NoError(t, err)

	_, err = svc.GenerateToken(ctx, "visitor", "grain-dryer")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.GenerateToken(ctx, "day-shift", "Grain-Dryer")
	require.ErrorIs(t, err, ErrInvalidPassword)

	store.err = errors.New("database is locked")
	_, err = svc.GenerateToken(ctx, "day-shift", "grain-dryer")
	require.ErrorIs(t, err, store.err)
}

func TestAuthService_TokenLastsOneShiftByDefault(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newOperatorStore(), AuthConfig{SigningKey: shiftKey})
	_, err := svc.SignUp(ctx, "day-shift", "grain-dryer")
	require.NoError(t, err)

	token, err := svc.GenerateToken(ctx, "day-shift", "grain-dryer")
	require.NoError(t, err)

	var claims Claims
	_, err = jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(shiftKey), nil
	})
	require.NoError(t, err)
	require.Equal(t, defaultTokenTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestAuthService_ParseTokenRejects(t *testing.T) {
	svc := NewAuthService(newOperatorStore(), AuthConfig{SigningKey: shiftKey})
	later := time.Now().Add(time.Hour)

	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	cases := map[string]string{
		"not a jwt":        "scan-status",
		"other yard's key": signedClaims(t, jwt.SigningMethodHS256, []byte("other-yard"), 1, later),
		"expired":          signedClaims(t, jwt.SigningMethodHS256, []byte(shiftKey), 1, time.Now().Add(-time.Minute)),
		"rsa signed":       signedClaims(t, jwt.SigningMethodRS256, rsaKey, 1, later),
	}
	for name, token := range cases {
		_, err := svc.ParseToken(token)
		require.Error(t, err, name)
	}

	uid, err := svc.ParseToken(signedClaims(t, jwt.SigningMethodHS256, []byte(shiftKey), 9, later))
	require.NoError(t, err)
	require.Equal(t, 9, uid)
}

func TestAuthService_NoSigningKey(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newOperatorStore(), AuthConfig{})
	_, err := svc.SignUp(ctx, "day-shift", "grain-dryer")
	require.NoError(t, err, "sign-up does not need the key")

	_, err = svc.GenerateToken(ctx, "day-shift", "grain-dryer")
	require.ErrorIs(t, err, ErrNoSigningKey)
	_, err = svc.ParseToken("anything")
	require.ErrorIs(t, err, ErrNoSigningKey)
}
