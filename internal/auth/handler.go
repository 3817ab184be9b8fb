package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/httpx"
	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/models"
	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/store"
	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/validate"
)

// BcryptCost is the work factor for new password hashes.
var BcryptCost = 12

// dummyHash is compared against when the email is unknown so a missing
// account costs the same as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("no-such-account-placeholder"), BcryptCost)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Issuer mints tokens for authenticated users.
type Issuer interface {
	Issue(userID, email string) (string, error)
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users  UserStore
	tokens Issuer
}

func NewHandler(users UserStore, tokens Issuer) *Handler {
	return &Handler{users: users, tokens: tokens}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a new account.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Invalid(w, map[string]string{"body": err.Error()})
		return
	}
	req.Email = normalizeEmail(req.Email)
	if fields := validate.Struct(req); fields != nil {
		httpx.Invalid(w, fields)
		return
	}
	// bcrypt rejects inputs over 72 bytes; the max tag counts runes.
	if len(req.Password) > 72 {
		httpx.Invalid(w, map[string]string{"password": "must be at most 72 bytes long"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), BcryptCost)
	if err != nil {
		httpx.Internal(w, "hash password", err)
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Email, string(hashed))
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			log.Printf("signup with existing email: %s", req.Email)
			httpx.Error(w, http.StatusBadRequest, "email already registered")
			return
		}
		httpx.Internal(w, "signup", err)
		return
	}

	log.Printf("user created: %s (id %s)", user.Email, user.ID)
	httpx.JSON(w, http.StatusCreated, models.SignupResponse{
		UserID:  user.ID,
		Email:   user.Email,
		Message: "Account created successfully",
	})
}

// Login verifies credentials and issues a token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Invalid(w, map[string]string{"body": err.Error()})
		return
	}
	req.Email = normalizeEmail(req.Email)
	if fields := validate.Struct(req); fields != nil {
		httpx.Invalid(w, fields)
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		log.Printf("login with unknown email: %s", req.Email)
		httpx.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	case err != nil:
		httpx.Internal(w, "login", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Printf("failed login for: %s", req.Email)
		httpx.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		httpx.Internal(w, "issue token", err)
		return
	}

	log.Printf("user logged in: %s (id %s)", user.Email, user.ID)
	httpx.JSON(w, http.StatusOK, models.LoginResponse{
		UserID: user.ID,
		Email:  user.Email,
		Token:  token,
	})
}
