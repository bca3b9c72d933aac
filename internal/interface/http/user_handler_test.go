package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/dmarques/accounts-api/internal/application"
	"github.com/dmarques/accounts-api/internal/domain/entity"
	repo "github.com/dmarques/accounts-api/internal/domain/repository"
	handlers "github.com/dmarques/accounts-api/internal/interface/http"
	"github.com/dmarques/accounts-api/internal/router/modules"
	"github.com/dmarques/accounts-api/pkg/helpers"
	"github.com/dmarques/accounts-api/pkg/validation"
)

// ---- in-memory repositories ----

type memUserRepo struct {
	nextID int64
	byMail map[string]entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, byMail: map[string]entity.User{}}
}

func (r *memUserRepo) Create(ctx context.Context, u *entity.User) error {
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.byMail[u.Email] = *u
	return nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, ok := r.byMail[email]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := r.byMail[email]
	return ok, nil
}

func (r *memUserRepo) Update(ctx context.Context, u *entity.User) error {
	if _, ok := r.byMail[u.Email]; !ok {
		return repo.ErrNotFound
	}
	r.byMail[u.Email] = *u
	return nil
}

func (r *memUserRepo) DeleteByEmail(ctx context.Context, email string) error {
	delete(r.byMail, email)
	return nil
}

type memAddressRepo struct {
	byID map[int64]entity.Address
}

func (r *memAddressRepo) GetByID(ctx context.Context, id int64) (*entity.Address, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &a, nil
}

func (r *memAddressRepo) Update(ctx context.Context, a *entity.Address) error {
	if _, ok := r.byID[a.ID]; !ok {
		return repo.ErrNotFound
	}
	r.byID[a.ID] = *a
	return nil
}

type memPhoneRepo struct {
	byID map[int64]entity.Phone
}

func (r *memPhoneRepo) GetByID(ctx context.Context, id int64) (*entity.Phone, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &p, nil
}

func (r *memPhoneRepo) Update(ctx context.Context, p *entity.Phone) error {
	if _, ok := r.byID[p.ID]; !ok {
		return repo.ErrNotFound
	}
	r.byID[p.ID] = *p
	return nil
}

// ---- helpers ----

type testEnv struct {
	router *gin.Engine
	svc    *userapp.Service
	jwt    *helpers.JWTManager
	users  *memUserRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	jwt := helpers.NewJWTManager("test-access-secret", "test-refresh-secret", time.Hour, 24*time.Hour)
	users := newMemUserRepo()
	addresses := &memAddressRepo{byID: map[int64]entity.Address{
		3: {ID: 3, UserID: 1, Street: "Main Street", Number: 100, City: "Springfield"},
	}}
	phones := &memPhoneRepo{byID: map[int64]entity.Phone{
		5: {ID: 5, UserID: 1, AreaCode: "11", Number: "99999-0000"},
	}}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := userapp.NewService(users, addresses, phones, jwt, nil, logger, nil, nil, "")
	handler := handlers.NewUserHandler(svc, jwt, logger, "localhost", false)

	r := gin.New()
	modules.NewUserModule(handler, jwt).Register(r.Group("/api"))

	return &testEnv{router: r, svc: svc, jwt: jwt, users: users}
}

func doJSON(router *gin.Engine, method, url, token string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, url, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body %q: %v", w.Body.String(), err)
	}
	return resp.Data
}

func registerBody() map[string]any {
	return map[string]any{
		"name":     "Ana",
		"email":    "a@x.com",
		"password": "secret123",
		"addresses": []map[string]any{{
			"street":      "Main Street",
			"number":      100,
			"city":        "Springfield",
			"state":       "SP",
			"postal_code": "01000-000",
		}},
		"phones": []map[string]any{{
			"area_code": "11",
			"number":    "99999-0000",
		}},
	}
}

func (e *testEnv) accessToken(t *testing.T, email string) string {
	t.Helper()
	token, _, err := e.jwt.GenerateAccessToken(1, email, "sid")
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}
	return token
}

// ---- tests ----

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := doJSON(env.router, http.MethodPost, "/api/register", "", registerBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := decodeData(t, w)
	if data["name"] != "Ana" || data["email"] != "a@x.com" {
		t.Fatalf("unexpected payload: %v", data)
	}
	if _, ok := data["password"]; ok {
		t.Fatal("password must not appear in responses")
	}
	if addrs, ok := data["addresses"].([]any); !ok || len(addrs) != 1 {
		t.Fatalf("expected one address in response, got %v", data["addresses"])
	}

	// Same email again conflicts.
	w = doJSON(env.router, http.MethodPost, "/api/register", "", registerBody())
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestRegisterEndpointValidation(t *testing.T) {
	env := newTestEnv(t)

	body := registerBody()
	delete(body, "email")
	w := doJSON(env.router, http.MethodPost, "/api/register", "", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	body = registerBody()
	body["password"] = "short"
	w = doJSON(env.router, http.MethodPost, "/api/register", "", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password, got %d", w.Code)
	}
}

func TestEmailExistsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	doJSON(env.router, http.MethodPost, "/api/register", "", registerBody())

	w := doJSON(env.router, http.MethodGet, "/api/users/exists?email=a@x.com", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if data := decodeData(t, w); data["exists"] != true {
		t.Fatalf("expected exists=true, got %v", data)
	}

	w = doJSON(env.router, http.MethodGet, "/api/users/exists?email=ghost@x.com", "", nil)
	if data := decodeData(t, w); data["exists"] != false {
		t.Fatalf("expected exists=false, got %v", data)
	}
}

func TestFindByEmailRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	w := doJSON(env.router, http.MethodGet, "/api/users?email=a@x.com", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}

func TestFindAndDeleteByEmail(t *testing.T) {
	env := newTestEnv(t)
	doJSON(env.router, http.MethodPost, "/api/register", "", registerBody())
	token := env.accessToken(t, "a@x.com")

	w := doJSON(env.router, http.MethodGet, "/api/users?email=a@x.com", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if data := decodeData(t, w); data["name"] != "Ana" {
		t.Fatalf("unexpected payload: %v", data)
	}

	w = doJSON(env.router, http.MethodDelete, "/api/users?email=a@x.com", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", w.Code)
	}

	w = doJSON(env.router, http.MethodGet, "/api/users?email=a@x.com", token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

func TestUpdateProfileEndpoint(t *testing.T) {
	env := newTestEnv(t)
	doJSON(env.router, http.MethodPost, "/api/register", "", registerBody())
	token := env.accessToken(t, "a@x.com")

	w := doJSON(env.router, http.MethodPut, "/api/profile", token, map[string]any{"name": "Ana Maria"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := decodeData(t, w)
	if data["name"] != "Ana Maria" || data["email"] != "a@x.com" {
		t.Fatalf("unexpected payload: %v", data)
	}

	stored, err := env.users.GetByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("stored user lookup failed: %v", err)
	}
	if stored.Name != "Ana Maria" {
		t.Fatalf("name not persisted: %q", stored.Name)
	}
	if !helpers.CompareHashAndPassword(stored.Password, "secret123") {
		t.Fatal("password hash must survive a name-only update")
	}
}

func TestUpdateAddressEndpoint(t *testing.T) {
	env := newTestEnv(t)
	doJSON(env.router, http.MethodPost, "/api/register", "", registerBody())
	token := env.accessToken(t, "a@x.com")

	w := doJSON(env.router, http.MethodPut, "/api/addresses/3", token, map[string]any{"city": "Shelbyville"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := decodeData(t, w)
	if data["city"] != "Shelbyville" || data["street"] != "Main Street" {
		t.Fatalf("unexpected merge result: %v", data)
	}

	w = doJSON(env.router, http.MethodPut, "/api/addresses/99", token, map[string]any{"city": "Nowhere"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown address, got %d", w.Code)
	}
}

func TestUpdatePhoneEndpoint(t *testing.T) {
	env := newTestEnv(t)
	doJSON(env.router, http.MethodPost, "/api/register", "", registerBody())
	token := env.accessToken(t, "a@x.com")

	w := doJSON(env.router, http.MethodPut, "/api/phones/5", token, map[string]any{"number": "98888-1111"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := decodeData(t, w)
	if data["number"] != "98888-1111" || data["area_code"] != "11" {
		t.Fatalf("unexpected merge result: %v", data)
	}

	w = doJSON(env.router, http.MethodPut, "/api/phones/99", token, map[string]any{"number": "0"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown phone, got %d", w.Code)
	}
}

func TestLogoutEndpoint(t *testing.T) {
	env := newTestEnv(t)
	doJSON(env.router, http.MethodPost, "/api/register", "", registerBody())
	token := env.accessToken(t, "a@x.com")

	w := doJSON(env.router, http.MethodPost, "/api/logout", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var cleared int
	for _, c := range w.Result().Cookies() {
		if (c.Name == "access_token" || c.Name == "refresh_token") && c.MaxAge < 0 {
			cleared++
		}
	}
	if cleared != 2 {
		t.Fatalf("expected both token cookies cleared, got %d", cleared)
	}
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)
	doJSON(env.router, http.MethodPost, "/api/register", "", registerBody())

	w := doJSON(env.router, http.MethodPost, "/api/login", "", map[string]any{"email": "a@x.com", "password": "secret123"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	var hasAccess bool
	for _, c := range cookies {
		if c.Name == "access_token" && c.Value != "" {
			hasAccess = true
		}
	}
	if !hasAccess {
		t.Fatal("login should set an access_token cookie")
	}

	w = doJSON(env.router, http.MethodPost, "/api/login", "", map[string]any{"email": "a@x.com", "password": "wrongpass1"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad credentials, got %d", w.Code)
	}
}
