package routes

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"taskfyer/internal/accounts"
	"taskfyer/internal/domain/tasks"
	"taskfyer/internal/domain/users"
	"taskfyer/internal/logging"
	"taskfyer/internal/session"
	"taskfyer/internal/testutil"
	"taskfyer/internal/tokens"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const clientURL = "http://client.test"

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	db     *gorm.DB
	mailer *testutil.Mailer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	mailer := &testutil.Mailer{}
	svc := accounts.NewService(
		accounts.NewGormUserRepository(db),
		tokens.NewService(tokens.NewGormStore(db)),
		mailer,
		accounts.BcryptHasher{Cost: bcrypt.MinCost},
		logging.Nop(),
		accounts.Config{BaseURL: clientURL},
	)

	r := gin.New()
	RegisterRoutes(r, Deps{
		DB:       db,
		Accounts: svc,
		Sessions: session.NewManager("test-secret", time.Hour),
	})
	return &testServer{t: t, engine: r, db: db, mailer: mailer}
}

func (s *testServer) do(method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// register creates a user and returns its session cookie.
func (s *testServer) register(email string) *http.Cookie {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/register", gin.H{"name": "Ann", "email": email, "password": "secret123"}, nil)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	s.t.Fatal("no session cookie")
	return nil
}

func (s *testServer) lastSecret(prefix string) string {
	s.t.Helper()
	msg, ok := s.mailer.Last()
	require.True(s.t, ok)
	return strings.TrimPrefix(msg.Link, clientURL+prefix)
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	code, _ := body["error"].(string)
	return code
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestVerifyEmailEndpoints(t *testing.T) {
	s := newTestServer(t)
	cookie := s.register("ann@example.com")

	w := s.do(http.MethodPost, "/api/v1/verify-email", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/verify-email", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	raw := s.lastSecret("/verify-email/")
	require.NotContains(t, w.Body.String(), raw, "secret only travels in the email link")

	w = s.do(http.MethodGet, "/api/v1/verify-email/"+raw+"ff", nil, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "TokenNotFound", errorCode(t, w))

	w = s.do(http.MethodGet, "/api/v1/verify-email/"+raw, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/verify-email/"+raw, nil, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "AlreadyVerified", errorCode(t, w))

	w = s.do(http.MethodPost, "/api/v1/verify-email", nil, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "AlreadyVerified", errorCode(t, w))
}

func TestVerifyEmail_DeliveryFailure(t *testing.T) {
	s := newTestServer(t)
	cookie := s.register("ann@example.com")
	s.mailer.Err = errors.New("smtp down")

	w := s.do(http.MethodPost, "/api/v1/verify-email", nil, cookie)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "DeliveryError", errorCode(t, w))
	require.NotContains(t, w.Body.String(), "smtp down")
}

func TestVerifyEmail_UserGone(t *testing.T) {
	s := newTestServer(t)
	cookie := s.register("ann@example.com")

	w := s.do(http.MethodPost, "/api/v1/verify-email", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	raw := s.lastSecret("/verify-email/")

	require.NoError(t, s.db.Where("email = ?", "ann@example.com").Delete(&users.User{}).Error)

	w = s.do(http.MethodGet, "/api/v1/verify-email/"+raw, nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "UserNotFound", errorCode(t, w))
}

func TestPasswordResetEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.register("ann@example.com")

	w := s.do(http.MethodPost, "/api/v1/forgot-password", gin.H{"email": "ghost@example.com"}, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "UserNotFound", errorCode(t, w))

	w = s.do(http.MethodPost, "/api/v1/forgot-password", gin.H{"email": "ann@example.com"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	raw := s.lastSecret("/reset-password/")

	w = s.do(http.MethodPost, "/api/v1/reset-password/"+raw, gin.H{"password": "p<a&ss>1"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/reset-password/"+raw, gin.H{"password": "again123"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "TokenNotFound", errorCode(t, w))

	// password fields bypass sanitizing
	w = s.do(http.MethodPost, "/api/v1/login", gin.H{"email": "ann@example.com", "password": "p<a&ss>1"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestForgotPassword_DeliveryFailure(t *testing.T) {
	s := newTestServer(t)
	s.register("ann@example.com")
	s.mailer.Err = errors.New("smtp down")

	w := s.do(http.MethodPost, "/api/v1/forgot-password", gin.H{"email": "ann@example.com"}, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestChangePasswordEndpoint(t *testing.T) {
	s := newTestServer(t)
	cookie := s.register("ann@example.com")

	w := s.do(http.MethodPost, "/api/v1/change-password", gin.H{"currentPassword": "nope-nope", "newPassword": "newpass1"}, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "InvalidCredentials", errorCode(t, w))

	w = s.do(http.MethodPost, "/api/v1/change-password", gin.H{"currentPassword": "secret123", "newPassword": "newpass1"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestLoginAndStatus(t *testing.T) {
	s := newTestServer(t)
	s.register("ann@example.com")

	w := s.do(http.MethodPost, "/api/v1/login", gin.H{"email": "ann@example.com", "password": "wrong-pass"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/register", gin.H{"name": "Ann", "email": "ann@example.com", "password": "secret123"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "UserAlreadyExists", errorCode(t, w))

	w = s.do(http.MethodPost, "/api/v1/login", gin.H{"email": "ann@example.com", "password": "secret123"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "password")

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	require.True(t, cookie.HttpOnly)

	w = s.do(http.MethodGet, "/api/v1/login-status", nil, cookie)
	require.Equal(t, "true", strings.TrimSpace(w.Body.String()))

	w = s.do(http.MethodGet, "/api/v1/login-status", nil, nil)
	require.Equal(t, "false", strings.TrimSpace(w.Body.String()))
}

func TestBearerHeaderAccepted(t *testing.T) {
	s := newTestServer(t)
	cookie := s.register("ann@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
	req.Header.Set("Authorization", "Bearer "+cookie.Value)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUserProfile(t *testing.T) {
	s := newTestServer(t)
	cookie := s.register("ann@example.com")

	w := s.do(http.MethodPatch, "/api/v1/user", gin.H{"bio": "<b>hi</b> there"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var u users.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	require.Equal(t, "hi there", u.Bio)
	require.Equal(t, "Ann", u.Name)
}

func TestCreateTask_TitleStoredAsPlainText(t *testing.T) {
	s := newTestServer(t)
	ann := s.register("ann@example.com")

	w := s.do(http.MethodPost, "/api/v1/task/create", gin.H{"title": "Don't <b>panic</b> & relax"}, ann)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var task tasks.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	require.Equal(t, "Don't panic & relax", task.Title)

	var stored tasks.Task
	require.NoError(t, s.db.First(&stored, task.ID).Error)
	require.Equal(t, "Don't panic & relax", stored.Title)
}

func TestTaskCRUD(t *testing.T) {
	s := newTestServer(t)
	ann := s.register("ann@example.com")
	bob := s.register("bob@example.com")

	w := s.do(http.MethodPost, "/api/v1/task/create", gin.H{"title": ""}, ann)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/task/create", gin.H{"title": "Write report", "dueDate": "2026-06-01", "priority": "high"}, ann)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	path := "/api/v1/task/" + itoa(created.ID)

	w = s.do(http.MethodGet, "/api/v1/tasks", nil, ann)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Length int `json:"length"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 1, list.Length)

	w = s.do(http.MethodGet, path, nil, bob)
	require.Equal(t, http.StatusNotFound, w.Code, "tasks are owner-scoped")

	w = s.do(http.MethodPatch, path, gin.H{"completed": true}, ann)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"completed":true`)
	require.Contains(t, w.Body.String(), `"title":"Write report"`)

	w = s.do(http.MethodDelete, path, nil, bob)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, path, nil, ann)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, path, nil, ann)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	s.register("admin@example.com")
	user := s.register("ann@example.com")

	w := s.do(http.MethodGet, "/api/v1/admin/users", nil, user)
	require.Equal(t, http.StatusForbidden, w.Code)

	require.NoError(t, s.db.Model(&users.User{}).Where("email = ?", "admin@example.com").
		Updates(map[string]any{"role": users.RoleAdmin}).Error)

	// role is carried by the session, so log in again
	w = s.do(http.MethodPost, "/api/v1/login", gin.H{"email": "admin@example.com", "password": "secret123"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	admin := w.Result().Cookies()[0]

	w = s.do(http.MethodGet, "/api/v1/admin/users", nil, admin)
	require.Equal(t, http.StatusForbidden, w.Code, "unverified admin")

	require.NoError(t, s.db.Model(&users.User{}).Where("email = ?", "admin@example.com").
		Update("is_verified", true).Error)

	w = s.do(http.MethodGet, "/api/v1/admin/users", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "ann@example.com")

	var ann users.User
	require.NoError(t, s.db.Where("email = ?", "ann@example.com").First(&ann).Error)
	w = s.do(http.MethodDelete, "/api/v1/admin/users/"+itoa(ann.ID), nil, admin)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/admin/users/"+itoa(ann.ID), nil, admin)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMalformedJSONRejected(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "ValidationError", errorCode(t, w))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
