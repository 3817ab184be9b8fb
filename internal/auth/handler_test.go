package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/models"
	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/store"
)

func TestMain(m *testing.M) {
	BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type mockUserStore struct {
	byEmail map[string]*models.User
	nextID  int
	getErr  error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{byEmail: make(map[string]*models.User)}
}

func (m *mockUserStore) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	if _, ok := m.byEmail[email]; ok {
		return nil, store.ErrEmailTaken
	}
	m.nextID++
	u := &models.User{ID: "user-" + strconv.Itoa(m.nextID), Email: email, PasswordHash: passwordHash}
	m.byEmail[email] = u
	return u, nil
}

func (m *mockUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func newTestHandler() (*Handler, *mockUserStore, *Tokens) {
	users := newMockUserStore()
	tokens := NewTokens(testSecret)
	return NewHandler(users, tokens), users, tokens
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	h(resp, req)
	return resp
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to unmarshal response %q: %v", resp.Body.String(), err)
	}
}

func TestSignupThenLogin(t *testing.T) {
	h, users, tokens := newTestHandler()

	resp := post(h.Signup, `{"email":"A@X.com ","password":"pw12345678"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", resp.Code, resp.Body.String())
	}
	var created models.SignupResponse
	decodeBody(t, resp, &created)
	if created.Email != "a@x.com" || created.UserID == "" {
		t.Fatalf("unexpected signup response: %+v", created)
	}
	if stored := users.byEmail["a@x.com"]; stored == nil || stored.PasswordHash == "pw12345678" {
		t.Fatal("password must be stored hashed")
	}

	resp = post(h.Login, `{"email":"a@x.com","password":"pw12345678"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", resp.Code, resp.Body.String())
	}
	var login models.LoginResponse
	decodeBody(t, resp, &login)
	if login.UserID != created.UserID {
		t.Fatalf("login user_id = %q, want %q", login.UserID, created.UserID)
	}

	id, err := tokens.Verify(login.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if id.UserID != created.UserID || id.Email != "a@x.com" {
		t.Fatalf("token subject = %+v, want %s", id, created.UserID)
	}
}

func TestSignupValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"bad json", `{"email":`, "body"},
		{"empty body", ``, "body"},
		{"missing email", `{"password":"pw12345678"}`, "email"},
		{"bad email", `{"email":"not-an-email","password":"pw12345678"}`, "email"},
		{"short password", `{"email":"a@x.com","password":"short"}`, "password"},
		{"multibyte password over 72 bytes", `{"email":"a@x.com","password":"` + strings.Repeat("é", 40) + `"}`, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := newTestHandler()
			resp := post(h.Signup, tt.body)
			if resp.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", resp.Code)
			}
			var got struct {
				Fields map[string]string `json:"fields"`
			}
			decodeBody(t, resp, &got)
			if got.Fields[tt.field] == "" {
				t.Fatalf("expected reason for %q, got %v", tt.field, got.Fields)
			}
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	h, _, _ := newTestHandler()
	if resp := post(h.Signup, `{"email":"a@x.com","password":"pw12345678"}`); resp.Code != http.StatusCreated {
		t.Fatalf("first signup status = %d", resp.Code)
	}
	resp := post(h.Signup, `{"email":"a@x.com","password":"pw87654321"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
}

func TestLoginInvalidCredentialsAreGeneric(t *testing.T) {
	h, _, _ := newTestHandler()
	post(h.Signup, `{"email":"a@x.com","password":"pw12345678"}`)

	wrongPassword := post(h.Login, `{"email":"a@x.com","password":"wrong-password"}`)
	unknownEmail := post(h.Login, `{"email":"nobody@x.com","password":"pw12345678"}`)

	for _, resp := range []*httptest.ResponseRecorder{wrongPassword, unknownEmail} {
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.Code)
		}
	}
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Fatalf("responses differ: %q vs %q", wrongPassword.Body.String(), unknownEmail.Body.String())
	}
}

func TestLoginStoreFailure(t *testing.T) {
	h, users, _ := newTestHandler()
	users.getErr = errors.New("connection refused")

	resp := post(h.Login, `{"email":"a@x.com","password":"pw12345678"}`)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "connection refused") {
		t.Fatal("internal error detail leaked to client")
	}
}
