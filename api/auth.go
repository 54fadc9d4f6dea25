package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/basic"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/dinebuddies-api/databases"
)

// Auth authenticates requests. Users log in with basic auth to get a signed
// token and then send it as a bearer token.
type Auth struct {
	users         databases.UserDatabase
	secret        []byte
	ttl           time.Duration
	now           func() time.Time
	authenticator auth.Authenticator
}

// NewAuth sets up go-guardian with a cached basic strategy and a bearer
// strategy that validates signed tokens
func NewAuth(users databases.UserDatabase, secret string, ttl time.Duration) *Auth {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	a := &Auth{users: users, secret: []byte(secret), ttl: ttl, now: time.Now}

	cache := store.NewFIFO(context.Background(), ttl)
	a.authenticator = auth.New()
	a.authenticator.EnableStrategy(basic.StrategyKey, basic.New(a.ValidateUser, cache))
	a.authenticator.EnableStrategy(bearer.CachedStrategyKey, bearer.New(a.ValidateToken, cache))
	return a
}

// Middleware rejects unauthenticated requests and stores the actor's id in
// the request context
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		user, err := a.authenticator.Authenticate(r)
		if err != nil {
			zap.S().Debugw("unauthorized", "url", r.URL.Path, "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"response": "unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), user.ID())))
	})
}

// TokenFromQuery copies a ?token= query parameter into the Authorization
// header. Browsers cannot set headers on websocket handshakes.
func TokenFromQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if t := r.URL.Query().Get("token"); t != "" && r.Header.Get("Authorization") == "" {
			r.Header.Set("Authorization", "Bearer "+t)
		}
		next.ServeHTTP(w, r)
	})
}

// CreateToken exchanges basic credentials for a signed token
func (a *Auth) CreateToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, _, ok := r.BasicAuth(); !ok {
		http.Error(w, "basic auth failed", http.StatusUnauthorized)
		return
	}
	user, err := a.authenticator.Strategy(basic.StrategyKey).Authenticate(r.Context(), r)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, expiresAt, err := a.IssueToken(user.ID())
	if err != nil {
		zap.S().Errorw("failed to sign token", "user", user.ID(), "error", err)
		http.Error(w, "failed to sign token", http.StatusInternalServerError)
		return
	}

	b, err := json.Marshal(map[string]interface{}{
		"token":     token,
		"_id":       user.ID(),
		"expiresAt": expiresAt,
	})
	if err != nil {
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Write(b)
}

// IssueToken signs a token for userID
func (a *Auth) IssueToken(userID string) (string, time.Time, error) {
	now := a.now()
	expiresAt := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	return signed, expiresAt, err
}

// ValidateToken checks a bearer token's signature and expiry
func (a *Auth) ValidateToken(ctx context.Context, r *http.Request, token string) (auth.Info, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return auth.NewDefaultUser(claims.Subject, claims.Subject, nil, nil), nil
}

// ValidateUser checks an email and password against the stored bcrypt hash
func (a *Auth) ValidateUser(ctx context.Context, r *http.Request, email, password string) (auth.Info, error) {
	user, err := a.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("no matching email found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("failed to compare password")
	}
	return auth.NewDefaultUser(user.Email, user.ID, nil, nil), nil
}
