package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nbatyrov/contactbook/internal/domain"
	"github.com/nbatyrov/contactbook/internal/transport/http/handler"
	"github.com/nbatyrov/contactbook/internal/transport/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAuthUsecase implements the unexported authUsecaser interface via method matching.
type fakeAuthUsecase struct {
	register            func(ctx context.Context, email, password string) (*domain.User, error)
	resendVerification  func(ctx context.Context, email string) error
	confirmVerification func(ctx context.Context, verificationToken string) error
	login               func(ctx context.Context, email, password string) (string, *domain.User, error)
	logout              func(ctx context.Context, userID string) error
	updateAvatar        func(ctx context.Context, userID string, upload io.Reader) (string, error)
}

func (f *fakeAuthUsecase) Register(ctx context.Context, email, password string) (*domain.User, error) {
	return f.register(ctx, email, password)
}

func (f *fakeAuthUsecase) ResendVerification(ctx context.Context, email string) error {
	return f.resendVerification(ctx, email)
}

func (f *fakeAuthUsecase) ConfirmVerification(ctx context.Context, verificationToken string) error {
	return f.confirmVerification(ctx, verificationToken)
}

func (f *fakeAuthUsecase) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAuthUsecase) Logout(ctx context.Context, userID string) error {
	return f.logout(ctx, userID)
}

func (f *fakeAuthUsecase) UpdateAvatar(ctx context.Context, userID string, upload io.Reader) (string, error) {
	return f.updateAvatar(ctx, userID, upload)
}

// asUser injects the values the auth middleware would have set.
func asUser(user *domain.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserKey, user)
		c.Set(middleware.UserIDKey, user.ID)
	}
}

func newAuthEngine(uc *fakeAuthUsecase, authed *domain.User) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := handler.NewAuthHandler(uc, logger)

	r := gin.New()
	r.POST("/api/users/register", h.Register)
	r.POST("/api/users/verify", h.ResendVerification)
	r.GET("/api/users/verify/:token", h.ConfirmVerification)
	r.POST("/api/users/login", h.Login)
	if authed != nil {
		r.GET("/api/users/logout", asUser(authed), h.Logout)
		r.GET("/api/users/current", asUser(authed), h.Current)
		r.PATCH("/api/users/avatars", asUser(authed), h.UpdateAvatar)
	}
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// ---- Register ----

func TestRegister_Created(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(_ context.Context, email, password string) (*domain.User, error) {
			if email != "ann@example.com" || password != "secret1" {
				t.Errorf("register called with %q / %q", email, password)
			}
			return &domain.User{
				ID:           "u1",
				Email:        email,
				Subscription: domain.SubscriptionStarter,
				AvatarURL:    "https://www.gravatar.com/avatar/x?s=250&r=pg&d=mm",
			}, nil
		},
	}

	w := postJSON(t, newAuthEngine(uc, nil), "/api/users/register",
		`{"email":"ann@example.com","password":"secret1"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Email        string `json:"email"`
		Subscription string `json:"subscription"`
		AvatarURL    string `json:"avatarURL"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Email != "ann@example.com" || resp.Subscription != "starter" || resp.AvatarURL == "" {
		t.Errorf("response = %+v", resp)
	}
}

func TestRegister_ShortPassword_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(_ context.Context, _, _ string) (*domain.User, error) {
			t.Fatal("register should not be called")
			return nil, nil
		},
	}

	w := postJSON(t, newAuthEngine(uc, nil), "/api/users/register",
		`{"email":"ann@example.com","password":"short"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRegister_InvalidEmail_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{}

	w := postJSON(t, newAuthEngine(uc, nil), "/api/users/register",
		`{"email":"not-an-email","password":"secret1"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRegister_EmailInUse_Returns409(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(_ context.Context, _, _ string) (*domain.User, error) {
			return nil, domain.ErrEmailInUse
		},
	}

	w := postJSON(t, newAuthEngine(uc, nil), "/api/users/register",
		`{"email":"ann@example.com","password":"secret1"}`)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Email in use") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestRegister_UsecaseError_Returns500(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(_ context.Context, _, _ string) (*domain.User, error) {
			return nil, errors.New("smtp down")
		},
	}

	w := postJSON(t, newAuthEngine(uc, nil), "/api/users/register",
		`{"email":"ann@example.com","password":"secret1"}`)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

// ---- ResendVerification ----

func TestResendVerification_OK(t *testing.T) {
	uc := &fakeAuthUsecase{
		resendVerification: func(_ context.Context, email string) error {
			if email != "ann@example.com" {
				t.Errorf("email = %q", email)
			}
			return nil
		},
	}

	w := postJSON(t, newAuthEngine(uc, nil), "/api/users/verify",
		`{"email":"ann@example.com"}`)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestResendVerification_MissingEmail_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{}

	w := postJSON(t, newAuthEngine(uc, nil), "/api/users/verify", `{}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestResendVerification_UnknownUser_Returns404(t *testing.T) {
	uc := &fakeAuthUsecase{
		resendVerification: func(_ context.Context, _ string) error {
			return domain.ErrUserNotFound
		},
	}

	w := postJSON(t, newAuthEngine(uc, nil), "/api/users/verify",
		`{"email":"ghost@example.com"}`)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestResendVerification_AlreadyVerified_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{
		resendVerification: func(_ context.Context, _ string) error {
			return domain.ErrAlreadyVerified
		},
	}

	w := postJSON(t, newAuthEngine(uc, nil), "/api/users/verify",
		`{"email":"ann@example.com"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "already") {
		t.Errorf("body = %s", w.Body.String())
	}
}

// ---- ConfirmVerification ----

func TestConfirmVerification_OK(t *testing.T) {
	uc := &fakeAuthUsecase{
		confirmVerification: func(_ context.Context, token string) error {
			if token != "tok123" {
				t.Errorf("token = %q", token)
			}
			return nil
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/verify/tok123", nil)
	newAuthEngine(uc, nil).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestConfirmVerification_UnknownToken_Returns404(t *testing.T) {
	uc := &fakeAuthUsecase{
		confirmVerification: func(_ context.Context, _ string) error {
			return domain.ErrUserNotFound
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/verify/bogus", nil)
	newAuthEngine(uc, nil).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// ---- Login ----

func TestLogin_OK(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, email, password string) (string, *domain.User, error) {
			return "signed.jwt", &domain.User{
				ID:           "u1",
				Email:        email,
				Subscription: domain.SubscriptionPro,
			}, nil
		},
	}

	w := postJSON(t, newAuthEngine(uc, nil), "/api/users/login",
		`{"email":"ann@example.com","password":"secret1"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
		User  struct {
			Email        string `json:"email"`
			Subscription string `json:"subscription"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "signed.jwt" || resp.User.Email != "ann@example.com" || resp.User.Subscription != "pro" {
		t.Errorf("response = %+v", resp)
	}
}

func TestLogin_BadCredentials_Returns401(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _, _ string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}

	w := postJSON(t, newAuthEngine(uc, nil), "/api/users/login",
		`{"email":"ann@example.com","password":"wrongpw"}`)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Email or password is wrong") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestLogin_InvalidJSON_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{}

	w := postJSON(t, newAuthEngine(uc, nil), "/api/users/login", `{bad`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// ---- Logout ----

func TestLogout_NoContent(t *testing.T) {
	var gotUserID string
	uc := &fakeAuthUsecase{
		logout: func(_ context.Context, userID string) error {
			gotUserID = userID
			return nil
		},
	}
	authed := &domain.User{ID: "u1", Email: "ann@example.com"}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/logout", nil)
	newAuthEngine(uc, authed).ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if gotUserID != "u1" {
		t.Errorf("logout called with userID %q", gotUserID)
	}
}

// ---- Current ----

func TestCurrent_ReturnsUser(t *testing.T) {
	uc := &fakeAuthUsecase{}
	authed := &domain.User{ID: "u1", Email: "ann@example.com", Subscription: domain.SubscriptionBusiness}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/current", nil)
	newAuthEngine(uc, authed).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Email        string `json:"email"`
		Subscription string `json:"subscription"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Email != "ann@example.com" || resp.Subscription != "business" {
		t.Errorf("response = %+v", resp)
	}
}

// ---- UpdateAvatar ----

func avatarForm(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("avatar", "me.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if err := png.Encode(part, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUpdateAvatar_OK(t *testing.T) {
	uc := &fakeAuthUsecase{
		updateAvatar: func(_ context.Context, userID string, upload io.Reader) (string, error) {
			if userID != "u1" {
				t.Errorf("userID = %q", userID)
			}
			if _, err := io.ReadAll(upload); err != nil {
				t.Errorf("read upload: %v", err)
			}
			return "/avatars/u1.png", nil
		},
	}
	authed := &domain.User{ID: "u1", Email: "ann@example.com"}

	body, contentType := avatarForm(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/users/avatars", body)
	req.Header.Set("Content-Type", contentType)
	newAuthEngine(uc, authed).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "/avatars/u1.png") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestUpdateAvatar_NoFile_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{}
	authed := &domain.User{ID: "u1", Email: "ann@example.com"}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/users/avatars", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	newAuthEngine(uc, authed).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No file provided") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestUpdateAvatar_UsecaseError_Returns500(t *testing.T) {
	uc := &fakeAuthUsecase{
		updateAvatar: func(_ context.Context, _ string, _ io.Reader) (string, error) {
			return "", errors.New("corrupt image")
		},
	}
	authed := &domain.User{ID: "u1", Email: "ann@example.com"}

	body, contentType := avatarForm(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/users/avatars", body)
	req.Header.Set("Content-Type", contentType)
	newAuthEngine(uc, authed).ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
