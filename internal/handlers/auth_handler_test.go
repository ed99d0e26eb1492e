package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/logger"
	"expensetracker/internal/middleware"
	"expensetracker/internal/models"
	"expensetracker/internal/services"
	"expensetracker/internal/validator"
)

const testUserID = "0190b7a4-7c1e-7000-8000-000000000001"

// --- mock services ---

type mockUserService struct {
	createUserFn     func(name, email, password string) (*models.User, error)
	getUserByEmailFn func(email string) (*models.User, error)
	getUserByIDFn    func(id string) (*models.User, error)
	verifyPasswordFn func(user *models.User, password string) bool
	attemptLoginFn   func(email, password string) (*models.User, error)
	updateProfileFn  func(id string, fields services.ProfileUpdateFields) (*models.User, error)
}

func (m *mockUserService) CreateUser(name, email, password string) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(name, email, password)
	}
	return &models.User{Base: models.Base{ID: testUserID}}, nil
}

func (m *mockUserService) GetUserByEmail(email string) (*models.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(email)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{Base: models.Base{ID: id}}, nil
}

func (m *mockUserService) VerifyPassword(user *models.User, password string) bool {
	if m.verifyPasswordFn != nil {
		return m.verifyPasswordFn(user, password)
	}
	return true
}

func (m *mockUserService) AttemptLogin(email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{Base: models.Base{ID: testUserID}}, nil
}

func (m *mockUserService) UpdateProfile(id string, fields services.ProfileUpdateFields) (*models.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(id, fields)
	}
	return &models.User{Base: models.Base{ID: id}}, nil
}

var _ services.UserServicer = (*mockUserService)(nil)

type mockAuditService struct {
	actions []string
}

func (m *mockAuditService) Log(_ string, action models.AuditAction, _, _, _ string, _ map[string]interface{}) {
	m.actions = append(m.actions, string(action))
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

func testTokens() *middleware.TokenManager {
	return middleware.NewTokenManager("test-secret", time.Hour)
}

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.GET("/auth/profile", injectUserID(testUserID), handler.GetProfile)
	r.PUT("/auth/profile", injectUserID(testUserID), handler.UpdateProfile)
	r.GET("/anonymous/profile", handler.GetProfile)
	return r
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// parseData returns the "data" member of a success envelope.
func parseData(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	result := parseJSON(t, rec)
	if result["success"] != true {
		t.Fatalf("expected success envelope, got: %v", result)
	}
	data, ok := result["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected data object in response, got: %v", result)
	}
	return data
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	if result["success"] != false {
		t.Errorf("expected success=false, got %v", result["success"])
	}
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// --- tests ---

func TestAuthHandler_Register(t *testing.T) {
	t.Run("returns 201 with token on success", func(t *testing.T) {
		var gotName, gotEmail string
		userSvc := &mockUserService{
			createUserFn: func(name, email, _ string) (*models.User, error) {
				gotName, gotEmail = name, email
				return &models.User{Base: models.Base{ID: testUserID}, Name: name, Email: email}, nil
			},
		}
		audit := &mockAuditService{}
		tokens := testTokens()
		r := setupAuthRouter(NewAuthHandler(userSvc, audit, tokens))

		rec := doRequest(r, "POST", "/auth/register",
			`{"name":"Alice","email":"alice@example.com","password":"secret1"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		data := parseData(t, rec)
		if data["id"] != testUserID || data["name"] != "Alice" || data["email"] != "alice@example.com" {
			t.Errorf("unexpected user data: %v", data)
		}
		token, _ := data["token"].(string)
		claims, err := tokens.Validate(token)
		if err != nil {
			t.Fatalf("expected valid token, got %v", err)
		}
		if claims.UserID != testUserID {
			t.Errorf("expected token for %s, got %s", testUserID, claims.UserID)
		}
		if gotName != "Alice" || gotEmail != "alice@example.com" {
			t.Errorf("service got name=%q email=%q", gotName, gotEmail)
		}
		if len(audit.actions) != 1 || audit.actions[0] != "REGISTER" {
			t.Errorf("expected REGISTER audit entry, got %v", audit.actions)
		}
	})

	t.Run("returns 400 on missing fields", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, &mockAuditService{}, testTokens()))

		rec := doRequest(r, "POST", "/auth/register", `{"email":"alice@example.com"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "INVALID_INPUT")
		if result["message"] != "name is required" {
			t.Errorf("unexpected message: %v", result["message"])
		}
	})

	t.Run("returns 400 on overlong name", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, &mockAuditService{}, testTokens()))

		body := `{"name":"` + strings.Repeat("a", 51) + `","email":"alice@example.com","password":"secret1"}`
		rec := doRequest(r, "POST", "/auth/register", body)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["message"] != "name must be at most 50 characters" {
			t.Errorf("unexpected message: %v", result["message"])
		}
	})

	t.Run("returns 400 on malformed JSON", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, &mockAuditService{}, testTokens()))

		rec := doRequest(r, "POST", "/auth/register", `{"name":`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if msg := parseJSON(t, rec)["message"]; msg != "Invalid request body" {
			t.Errorf("unexpected message: %v", msg)
		}
	})

	t.Run("returns 400 on duplicate email", func(t *testing.T) {
		userSvc := &mockUserService{
			createUserFn: func(_, _, _ string) (*models.User, error) {
				return nil, apperrors.ErrDuplicateEmail
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockAuditService{}, testTokens()))

		rec := doRequest(r, "POST", "/auth/register",
			`{"name":"Alice","email":"alice@example.com","password":"secret1"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "DUPLICATE_EMAIL")
		if result["message"] != "User already exists" {
			t.Errorf("unexpected message: %v", result["message"])
		}
		if kind := result["error"].(map[string]interface{})["kind"]; kind != "conflict" {
			t.Errorf("expected kind conflict, got %v", kind)
		}
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns 200 with token on success", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(email, password string) (*models.User, error) {
				if email != "alice@example.com" || password != "secret1" {
					t.Errorf("unexpected credentials %q/%q", email, password)
				}
				return &models.User{Base: models.Base{ID: testUserID}, Name: "Alice", Email: email}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockAuditService{}, testTokens()))

		rec := doRequest(r, "POST", "/auth/login", `{"email":"alice@example.com","password":"secret1"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		data := parseData(t, rec)
		if data["token"] == "" || data["token"] == nil {
			t.Error("expected token in response")
		}
		if data["email"] != "alice@example.com" {
			t.Errorf("expected email, got %v", data["email"])
		}
	})

	t.Run("returns 401 on invalid credentials", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(_, _ string) (*models.User, error) {
				return nil, apperrors.ErrInvalidCredentials
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockAuditService{}, testTokens()))

		rec := doRequest(r, "POST", "/auth/login", `{"email":"alice@example.com","password":"wrong"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_CREDENTIALS")
	})

	t.Run("returns 400 on missing password", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, &mockAuditService{}, testTokens()))

		rec := doRequest(r, "POST", "/auth/login", `{"email":"alice@example.com"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_GetProfile(t *testing.T) {
	t.Run("returns 200 with user", func(t *testing.T) {
		userSvc := &mockUserService{
			getUserByIDFn: func(id string) (*models.User, error) {
				return &models.User{
					Base:   models.Base{ID: id},
					Name:   "Alice",
					Email:  "alice@example.com",
					Budget: decimal.RequireFromString("1500"),
				}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockAuditService{}, testTokens()))

		rec := doRequest(r, "GET", "/auth/profile", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		data := parseData(t, rec)
		if data["id"] != testUserID || data["name"] != "Alice" {
			t.Errorf("unexpected profile: %v", data)
		}
		if data["budget"].(float64) != 1500 {
			t.Errorf("expected budget 1500, got %v", data["budget"])
		}
		if _, leaked := data["password"]; leaked {
			t.Error("password must not be exposed")
		}
	})

	t.Run("returns 401 when user no longer exists", func(t *testing.T) {
		userSvc := &mockUserService{
			getUserByIDFn: func(string) (*models.User, error) {
				return nil, apperrors.ErrUserNotFound
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockAuditService{}, testTokens()))

		rec := doRequest(r, "GET", "/auth/profile", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNAUTHORIZED")
	})

	t.Run("returns 401 without authenticated user", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, &mockAuditService{}, testTokens()))

		rec := doRequest(r, "GET", "/anonymous/profile", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_UpdateProfile(t *testing.T) {
	t.Run("passes only provided fields", func(t *testing.T) {
		var got services.ProfileUpdateFields
		userSvc := &mockUserService{
			updateProfileFn: func(id string, fields services.ProfileUpdateFields) (*models.User, error) {
				got = fields
				return &models.User{Base: models.Base{ID: id}, Name: "Alice", Budget: *fields.Budget}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupAuthRouter(NewAuthHandler(userSvc, audit, testTokens()))

		rec := doRequest(r, "PUT", "/auth/profile", `{"budget":250.75}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Name != nil {
			t.Errorf("expected name untouched, got %q", *got.Name)
		}
		if got.Budget == nil || !got.Budget.Equal(decimal.RequireFromString("250.75")) {
			t.Errorf("expected budget 250.75, got %v", got.Budget)
		}
		if len(audit.actions) != 1 || audit.actions[0] != "UPDATE_PROFILE" {
			t.Errorf("expected UPDATE_PROFILE audit entry, got %v", audit.actions)
		}
	})

	t.Run("returns 400 on service validation error", func(t *testing.T) {
		userSvc := &mockUserService{
			updateProfileFn: func(string, services.ProfileUpdateFields) (*models.User, error) {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget cannot be negative")
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockAuditService{}, testTokens()))

		rec := doRequest(r, "PUT", "/auth/profile", `{"budget":-1}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}
