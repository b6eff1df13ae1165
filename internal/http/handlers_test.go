package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/pabloleguizamon/dragon-challenge/internal/auth"
	"github.com/pabloleguizamon/dragon-challenge/internal/db"
	"github.com/pabloleguizamon/dragon-challenge/internal/domain"
	gqlapi "github.com/pabloleguizamon/dragon-challenge/internal/graphql"
	"github.com/pabloleguizamon/dragon-challenge/internal/service"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testServer struct {
	*Server
	adminToken string
}

func setupServer(t *testing.T, access service.Access) *testServer {
	t.Helper()
	stores := db.NewMemoryStores()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.Services{
		Auth:     service.NewAuthService(stores.Users, &auth.Hasher{Cost: bcrypt.MinCost}, auth.NewTokenIssuer("k", time.Hour)),
		Products: service.NewProductService(stores.Products),
		Orders:   service.NewOrderService(stores.Products, stores.Orders, stores.Tx, service.WithOrderLogger(log)),
		Users:    service.NewUserService(stores.Users),
		Access:   access,
	}
	admin, _, err := svc.Auth.EnsureUser(context.Background(), "admin@dragon.local", "dragon123", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	tok, err := svc.Auth.IssueToken(admin)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	s := NewServer(svc, Options{
		CORSOrigin: "http://localhost:3000",
		Schema:     gqlapi.NewSchema(svc, log),
		Health:     stores.Health,
		Logger:     log,
	})
	return &testServer{Server: s, adminToken: tok}
}

func doJSON(t *testing.T, s *testServer, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

type productJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock int    `json:"stock"`
	State string `json:"state"`
}

type orderJSON struct {
	ID     string `json:"id"`
	Total  string `json:"total"`
	Status string `json:"status"`
	Items  []struct {
		Quantity int    `json:"quantity"`
		Price    string `json:"price"`
		Subtotal string `json:"subtotal"`
	} `json:"items"`
}

func (s *testServer) createProduct(t *testing.T, name string, price, stock int) productJSON {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/api/v1/products", s.adminToken, map[string]any{
		"name": name, "description": name + " description", "price": price, "stock": stock,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create product code %v: %s", w.Code, w.Body.String())
	}
	var p productJSON
	decode(t, w, &p)
	return p
}

func (s *testServer) register(t *testing.T, email string) string {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email": email, "password": "secret1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register code %v: %s", w.Code, w.Body.String())
	}
	var p struct {
		AccessToken string `json:"accessToken"`
	}
	decode(t, w, &p)
	return p.AccessToken
}

func TestProductFlow(t *testing.T) {
	s := setupServer(t, service.Access{})
	p := s.createProduct(t, "Dragon lamp", 10, 5)
	s.createProduct(t, "Plate", 3, 1)

	w := doJSON(t, s, http.MethodGet, "/api/v1/products/"+p.ID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get code %v", w.Code)
	}

	w = doJSON(t, s, http.MethodPut, "/api/v1/products/"+p.ID, s.adminToken, map[string]any{"stock": 7})
	if w.Code != http.StatusOK {
		t.Fatalf("update code %v: %s", w.Code, w.Body.String())
	}
	var upd productJSON
	decode(t, w, &upd)
	if upd.Stock != 7 || upd.Name != "Dragon lamp" || upd.Price != "10" {
		t.Fatalf("partial update lost fields: %+v", upd)
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/products?q=DRAG", "", nil)
	var found []productJSON
	decode(t, w, &found)
	if len(found) != 1 || found[0].ID != p.ID {
		t.Fatalf("search returned %+v", found)
	}

	w = doJSON(t, s, http.MethodDelete, "/api/v1/products/"+p.ID, s.adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete code %v", w.Code)
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/products", "", nil)
	var list []productJSON
	decode(t, w, &list)
	if len(list) != 1 || list[0].Name != "Plate" {
		t.Fatalf("retired product still listed: %+v", list)
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/products/"+p.ID, "", nil)
	var retired productJSON
	decode(t, w, &retired)
	if w.Code != http.StatusOK || retired.State != "retired" {
		t.Fatalf("retired product should resolve by id: %v %+v", w.Code, retired)
	}
}

func TestGuard(t *testing.T) {
	s := setupServer(t, service.Access{})
	body := map[string]any{"name": "x", "description": "y", "price": 1}

	for name, token := range map[string]string{"missing": "", "garbage": "not-a-token"} {
		w := doJSON(t, s, http.MethodPost, "/api/v1/products", token, body)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s token: expected 401, got %v", name, w.Code)
		}
		var e errorResponse
		decode(t, w, &e)
		if e.Code != service.CodeUnauthenticated {
			t.Fatalf("%s token: expected UNAUTHENTICATED, got %q", name, e.Code)
		}
	}
	if w := doJSON(t, s, http.MethodGet, "/api/v1/orders/mine", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("orders without token: %v", w.Code)
	}
	if w := doJSON(t, s, http.MethodGet, "/api/v1/products", "garbage", nil); w.Code != http.StatusOK {
		t.Fatalf("public route must ignore a bad token, got %v", w.Code)
	}
}

func TestAuthEndpoints(t *testing.T) {
	s := setupServer(t, service.Access{})
	s.register(t, "ada@example.com")

	w := doJSON(t, s, http.MethodPost, "/api/v1/auth/register", "", map[string]any{"email": "ada@example.com", "password": "secret1"})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: %v", w.Code)
	}
	w = doJSON(t, s, http.MethodPost, "/api/v1/auth/register", "", map[string]any{"email": "bad", "password": "1"})
	var e errorResponse
	decode(t, w, &e)
	if w.Code != http.StatusBadRequest || e.Code != service.CodeValidationFailed || e.Details["fields"] == nil {
		t.Fatalf("invalid register: %v %+v", w.Code, e)
	}
	w = doJSON(t, s, http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "ada@example.com", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: %v", w.Code)
	}
	w = doJSON(t, s, http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "ada@example.com", "password": "secret1"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %v", w.Code)
	}
}

func TestOrderFlow(t *testing.T) {
	s := setupServer(t, service.Access{})
	p := s.createProduct(t, "P", 10, 5)
	buyer := s.register(t, "buyer@example.com")
	items := map[string]any{"items": []map[string]any{{"productId": p.ID, "quantity": 3}}}

	w := doJSON(t, s, http.MethodPost, "/api/v1/orders", buyer, items)
	if w.Code != http.StatusCreated {
		t.Fatalf("create order code %v: %s", w.Code, w.Body.String())
	}
	var o orderJSON
	decode(t, w, &o)
	if o.Total != "30" || o.Status != "PENDING" || len(o.Items) != 1 || o.Items[0].Subtotal != "30" {
		t.Fatalf("unexpected order: %+v", o)
	}

	w = doJSON(t, s, http.MethodPost, "/api/v1/orders", buyer, items)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %v", w.Code)
	}
	var e errorResponse
	decode(t, w, &e)
	if e.Code != service.CodeInsufficientStock || e.Details["available"] != float64(2) {
		t.Fatalf("unexpected error body: %+v", e)
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/orders/mine", buyer, nil)
	var mine []orderJSON
	decode(t, w, &mine)
	if len(mine) != 1 || mine[0].ID != o.ID {
		t.Fatalf("mine: %+v", mine)
	}

	w = doJSON(t, s, http.MethodPatch, "/api/v1/orders/"+o.ID+"/status", s.adminToken, map[string]any{"status": "PROCESSING"})
	if w.Code != http.StatusOK {
		t.Fatalf("status code %v: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, s, http.MethodPatch, "/api/v1/orders/"+o.ID+"/status", s.adminToken, map[string]any{"status": "SHIPPED"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad status: expected 400, got %v", w.Code)
	}

	w = doJSON(t, s, http.MethodPost, "/api/v1/orders/"+o.ID+"/cancel", buyer, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("cancel code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/v1/products/"+p.ID, "", nil)
	var after productJSON
	decode(t, w, &after)
	if after.Stock != 5 {
		t.Fatalf("stock not restored: %d", after.Stock)
	}
	if w := doJSON(t, s, http.MethodPost, "/api/v1/orders/"+o.ID+"/cancel", buyer, nil); w.Code != http.StatusConflict {
		t.Fatalf("second cancel: expected 409, got %v", w.Code)
	}
}

func TestNotFoundAndBadInput(t *testing.T) {
	s := setupServer(t, service.Access{})
	cases := []struct {
		method, path string
		body         any
		want         int
	}{
		{http.MethodGet, "/api/v1/products/not-a-uuid", nil, http.StatusBadRequest},
		{http.MethodGet, "/api/v1/products/6f1c1f0e-3b7a-4c53-9b8e-1f1f1f1f1f1f", nil, http.StatusNotFound},
		{http.MethodGet, "/api/v1/orders/6f1c1f0e-3b7a-4c53-9b8e-1f1f1f1f1f1f", nil, http.StatusNotFound},
		{http.MethodPost, "/api/v1/orders", map[string]any{"items": []any{}}, http.StatusBadRequest},
		{http.MethodPost, "/api/v1/orders", map[string]any{"items": []map[string]any{{"productId": "6f1c1f0e-3b7a-4c53-9b8e-1f1f1f1f1f1f", "quantity": 1}}}, http.StatusNotFound},
		{http.MethodPost, "/api/v1/products", "{", http.StatusBadRequest},
	}
	for _, tc := range cases {
		w := doJSON(t, s, tc.method, tc.path, s.adminToken, tc.body)
		if w.Code != tc.want {
			t.Errorf("%s %s: expected %d, got %d (%s)", tc.method, tc.path, tc.want, w.Code, w.Body.String())
		}
	}
}

func TestEnforcedRoles(t *testing.T) {
	s := setupServer(t, service.Access{EnforceRoles: true})
	buyer := s.register(t, "buyer@example.com")

	for _, path := range []string{"/api/v1/orders", "/api/v1/users"} {
		if w := doJSON(t, s, http.MethodGet, path, buyer, nil); w.Code != http.StatusForbidden {
			t.Fatalf("%s as buyer: expected 403, got %v", path, w.Code)
		}
		if w := doJSON(t, s, http.MethodGet, path, s.adminToken, nil); w.Code != http.StatusOK {
			t.Fatalf("%s as admin: expected 200, got %v", path, w.Code)
		}
	}
	w := doJSON(t, s, http.MethodPost, "/api/v1/products", buyer, map[string]any{"name": "x", "description": "y", "price": 1})
	if w.Code != http.StatusForbidden {
		t.Fatalf("create product as buyer: %v", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	s := setupServer(t, service.Access{})
	w := doJSON(t, s, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz code %v", w.Code)
	}
}

func TestGraphQLMount(t *testing.T) {
	s := setupServer(t, service.Access{})
	p := s.createProduct(t, "P", 4, 2)
	buyer := s.register(t, "buyer@example.com")
	query := map[string]any{
		"query":     `mutation($id: String!) { createOrder(createOrderInput: {items: [{productId: $id, quantity: 2}]}) { total } }`,
		"variables": map[string]any{"id": p.ID},
	}

	var anon struct {
		Errors []struct {
			Extensions map[string]any `json:"extensions"`
		} `json:"errors"`
	}
	decode(t, doJSON(t, s, http.MethodPost, "/graphql", "", query), &anon)
	if len(anon.Errors) != 1 || anon.Errors[0].Extensions["code"] != service.CodeUnauthenticated {
		t.Fatalf("expected UNAUTHENTICATED, got %+v", anon)
	}

	var ok struct {
		Data struct {
			CreateOrder struct{ Total float64 } `json:"createOrder"`
		} `json:"data"`
		Errors []any `json:"errors"`
	}
	decode(t, doJSON(t, s, http.MethodPost, "/graphql", buyer, query), &ok)
	if len(ok.Errors) != 0 || ok.Data.CreateOrder.Total != 8 {
		t.Fatalf("unexpected response: %+v", ok)
	}
}
