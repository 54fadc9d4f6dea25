package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/dinebuddies-api/api"
	"github.com/linesmerrill/dinebuddies-api/config"
	"github.com/linesmerrill/dinebuddies-api/databases"
	"github.com/linesmerrill/dinebuddies-api/models"
	"github.com/linesmerrill/dinebuddies-api/services"
)

const minPasswordLength = 8

// User exposes accounts and the follow graph
type User struct {
	DB     databases.UserDatabase
	Follow *services.FollowGraph
	Policy *services.CancellationPolicy
	Now    func() time.Time
}

type signUpRequest struct {
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Password    string             `json:"password"`
	Avatar      string             `json:"avatar"`
	AccountType models.AccountType `json:"accountType"`
	Gender      models.Gender      `json:"gender"`
	Age         int                `json:"age"`
}

func (s signUpRequest) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("name is required")
	}
	if !strings.Contains(s.Email, "@") {
		return errors.New("a valid email is required")
	}
	if len(s.Password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	switch s.AccountType {
	case models.AccountUser, models.AccountBusiness, models.AccountGuest:
	default:
		return fmt.Errorf("account type %q cannot sign up", s.AccountType)
	}
	switch s.Gender {
	case "", models.GenderMale, models.GenderFemale:
	default:
		return fmt.Errorf("unknown gender %q", s.Gender)
	}
	if s.Age < 0 {
		return errors.New("age cannot be negative")
	}
	return nil
}

// SignUpHandler creates an account with a bcrypt hashed password
func (u User) SignUpHandler(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.AccountType == "" {
		req.AccountType = models.AccountUser
	}
	if err := req.validate(); err != nil {
		config.ErrorStatus("invalid sign up", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	_, err := u.DB.FindByEmail(ctx, req.Email)
	if err == nil {
		config.ErrorStatus("email is already registered", http.StatusConflict, w, fmt.Errorf("email %s exists", req.Email))
		return
	}
	if !errors.Is(err, databases.ErrNotFound) {
		config.ErrorStatus("failed to look up email", http.StatusInternalServerError, w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	user := models.User{
		ID:                primitive.NewObjectID().Hex(),
		Name:              strings.TrimSpace(req.Name),
		Avatar:            req.Avatar,
		Email:             req.Email,
		PasswordHash:      string(hash),
		AccountType:       req.AccountType,
		Gender:            req.Gender,
		Age:               req.Age,
		Following:         []string{},
		JoinedCommunities: []string{},
		CreatedAt:         u.now(),
	}
	if err := u.DB.InsertOne(ctx, user); err != nil {
		config.ErrorStatus("failed to create user", http.StatusInternalServerError, w, err)
		return
	}
	zap.S().Infow("user signed up", "user", user.ID, "accountType", user.AccountType)

	writeJSON(w, http.StatusCreated, user)
}

// UserHandler returns a user. Other users only see the public fields.
func (u User) UserHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	actorID, ok := actor(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.DB.FindByID(ctx, userID)
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}
	if actorID == userID {
		writeJSON(w, http.StatusOK, user)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

// FollowHandler toggles whether the caller follows {userId}
func (u User) FollowHandler(w http.ResponseWriter, r *http.Request) {
	targetID := mux.Vars(r)["userId"]
	actorID, ok := actor(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := u.Follow.ToggleFollow(ctx, actorID, targetID)
	if err != nil {
		writeServiceError("failed to toggle follow", w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// FollowersHandler lists the users following {userId}
func (u User) FollowersHandler(w http.ResponseWriter, r *http.Request) {
	u.listUsers(w, r, "failed to get followers", u.Follow.GetFollowers)
}

// FollowingHandler lists the users {userId} follows
func (u User) FollowingHandler(w http.ResponseWriter, r *http.Request) {
	u.listUsers(w, r, "failed to get following", u.Follow.GetFollowing)
}

// MutualFollowersHandler lists followers of {userId} that {userId} follows back
func (u User) MutualFollowersHandler(w http.ResponseWriter, r *http.Request) {
	u.listUsers(w, r, "failed to get mutual followers", u.Follow.GetMutualFollowers)
}

func (u User) listUsers(w http.ResponseWriter, r *http.Request, message string, list func(ctx context.Context, userID string) ([]models.User, error)) {
	userID := mux.Vars(r)["userId"]
	if _, ok := actor(w, r); !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	users, err := list(ctx, userID)
	if err != nil {
		writeServiceError(message, w, err)
		return
	}
	writeJSON(w, http.StatusOK, publicUsers(users))
}

// MutualCountHandler counts the users that both {userId} and ?with= follow
func (u User) MutualCountHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	otherID := r.URL.Query().Get("with")
	if otherID == "" {
		config.ErrorStatus("query param with is required", http.StatusBadRequest, w, fmt.Errorf("query param with is required"))
		return
	}
	if _, ok := actor(w, r); !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	count, err := u.Follow.CountMutual(ctx, userID, otherID)
	if err != nil {
		writeServiceError("failed to count mutual followers", w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// CancellationsHandler returns the caller's cancellations inside the penalty window
func (u User) CancellationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := self(w, r, mux.Vars(r)["userId"])
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	history, err := u.Policy.GetUserCancellationHistory(ctx, userID)
	if err != nil {
		writeServiceError("failed to get cancellation history", w, err)
		return
	}
	if history == nil {
		history = []models.CancellationRecord{}
	}
	writeJSON(w, http.StatusOK, history)
}

// CanCreateInvitationHandler reports whether the caller is currently restricted
func (u User) CanCreateInvitationHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := self(w, r, mux.Vars(r)["userId"])
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	perm, err := u.Policy.CanCreateInvitation(ctx, userID)
	if err != nil {
		writeServiceError("failed to check invitation restriction", w, err)
		return
	}
	writeJSON(w, http.StatusOK, perm)
}

func (u User) now() time.Time {
	if u.Now == nil {
		return time.Now()
	}
	return u.Now()
}

func publicUsers(users []models.User) []models.PublicUser {
	out := make([]models.PublicUser, 0, len(users))
	for _, user := range users {
		out = append(out, user.Public())
	}
	return out
}

// queryInt reads a positive integer query param, falling back to def
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		zap.S().Warnf("ignoring %s=%q, using default of %v", name, raw, def)
		return def
	}
	return v
}
