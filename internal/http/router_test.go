package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-products-api/internal/config"
	"github.com/tbourn/go-products-api/internal/domain"
	"github.com/tbourn/go-products-api/internal/http/handlers"
	"github.com/tbourn/go-products-api/internal/http/middleware"
	"github.com/tbourn/go-products-api/internal/repo"
	"github.com/tbourn/go-products-api/internal/services"
)

const testKey = "test-key"

func testConfig() config.Config {
	return config.Config{
		AppEnv:       "production",
		APIKey:       testKey,
		APIBasePath:  "/",
		MaxBodyBytes: 1 << 20,
		Security:     config.SecurityConfig{EnableHSTS: false},
		OTEL:         config.OTELConfig{ServiceName: "test-svc"},
	}
}

func newRouter(t *testing.T, cfg config.Config) (*gin.Engine, *repo.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := repo.NewMemoryStore()
	if err := repo.Seed(context.Background(), st); err != nil {
		t.Fatalf("seed: %v", err)
	}
	r := gin.New()
	RegisterRoutes(r, services.NewProductService(st), cfg)
	return r, st
}

func send(r http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func withKey(extra ...string) map[string]string {
	h := map[string]string{"X-API-Key": testKey}
	for i := 0; i+1 < len(extra); i += 2 {
		h[extra[i]] = extra[i+1]
	}
	return h
}

func storeLen(t *testing.T, st *repo.MemoryStore) int {
	t.Helper()
	all, err := st.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return len(all)
}

func TestRegisterRoutes_RejectsMissingKeyEverywhere(t *testing.T) {
	r, st := newRouter(t, testConfig())
	before := storeLen(t, st)

	cases := []struct{ method, path, body string }{
		{http.MethodGet, "/", ""},
		{http.MethodGet, "/health", ""},
		{http.MethodGet, "/metrics", ""},
		{http.MethodGet, "/products", ""},
		{http.MethodPost, "/products", `{"name":"x","description":"y","price":1,"category":"z"}`},
		{http.MethodGet, "/does-not-exist", ""},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := send(r, tc.method, tc.path, tc.body, nil)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d; want 401", w.Code)
			}
			if want := `{"error":"` + middleware.MsgUnauthorized + `"}`; w.Body.String() != want {
				t.Fatalf("body = %s; want %s", w.Body.String(), want)
			}
		})
	}

	w := send(r, http.MethodGet, "/products", "", map[string]string{"X-API-Key": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong key status = %d; want 401", w.Code)
	}
	if got := storeLen(t, st); got != before {
		t.Fatalf("store changed by rejected requests: %d -> %d", before, got)
	}
}

func TestRegisterRoutes_AuthorizationScheme(t *testing.T) {
	r, _ := newRouter(t, testConfig())

	w := send(r, http.MethodGet, "/health", "", map[string]string{"Authorization": "ApiKey " + testKey})
	if w.Code != http.StatusOK {
		t.Fatalf("ApiKey scheme status = %d; want 200", w.Code)
	}
	w = send(r, http.MethodGet, "/health", "", map[string]string{"Authorization": "Bearer " + testKey})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Bearer scheme status = %d; want 401", w.Code)
	}
}

func TestRegisterRoutes_HealthMetricsRoot(t *testing.T) {
	r, _ := newRouter(t, testConfig())

	w := send(r, http.MethodGet, "/health", "", withKey())
	if w.Code != http.StatusOK || w.Body.String() != `{"status":"ok"}` {
		t.Fatalf("GET /health = %d %s", w.Code, w.Body.String())
	}
	if rid := w.Header().Get("X-Request-ID"); rid == "" {
		t.Fatalf("expected X-Request-ID header")
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("security headers missing, nosniff=%q", got)
	}

	// hit a product route so the request counter has a sample
	send(r, http.MethodGet, "/products", "", withKey())
	w = send(r, http.MethodGet, "/metrics", "", withKey())
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Fatalf("GET /metrics = %d, missing http_requests_total", w.Code)
	}

	w = send(r, http.MethodGet, "/", "", withKey())
	if w.Code != http.StatusOK || w.Body.String() != handlers.Greeting {
		t.Fatalf("GET / = %d %q", w.Code, w.Body.String())
	}
}

func TestRegisterRoutes_CORSAllowAll(t *testing.T) {
	r, _ := newRouter(t, testConfig())

	w := send(r, http.MethodGet, "/health", "", withKey())
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}

	// preflight is answered before the key gate
	w = send(r, http.MethodOptions, "/products", "", map[string]string{
		"Origin":                        "http://anywhere.test",
		"Access-Control-Request-Method": http.MethodPost,
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d; want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("preflight ACAO = %q", got)
	}
}

func TestRegisterRoutes_CORSWithOrigins(t *testing.T) {
	cfg := testConfig()
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	r, _ := newRouter(t, cfg)

	w := send(r, http.MethodGet, "/health", "", withKey("Origin", "http://example.com"))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}

	w = send(r, http.MethodGet, "/health", "", withKey("Origin", "http://evil.test"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("disallowed origin status = %d; want 403", w.Code)
	}
}

func TestRegisterRoutes_UnknownRouteAndMethod(t *testing.T) {
	r, _ := newRouter(t, testConfig())

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/nope"},
		{http.MethodPatch, "/products/abc"},
		{http.MethodPost, "/health"},
	} {
		w := send(r, tc.method, tc.path, "", withKey())
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s %s = %d; want 404", tc.method, tc.path, w.Code)
		}
		if want := `{"error":"Route not found"}`; w.Body.String() != want {
			t.Fatalf("%s %s body = %s", tc.method, tc.path, w.Body.String())
		}
	}
}

func TestRegisterRoutes_StatsNotTakenAsID(t *testing.T) {
	r, st := newRouter(t, testConfig())

	w := send(r, http.MethodGet, "/products/stats/category-count", "", withKey())
	if w.Code != http.StatusOK {
		t.Fatalf("stats = %d %s", w.Code, w.Body.String())
	}
	var counts map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &counts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	sum := 0
	for _, n := range counts {
		sum += n
	}
	if sum != storeLen(t, st) {
		t.Fatalf("counts sum = %d; want %d (%v)", sum, storeLen(t, st), counts)
	}
	if counts["Kitchen"] != 1 {
		t.Fatalf("Kitchen = %d; want 1", counts["Kitchen"])
	}
}

func TestRegisterRoutes_ProductFlowUnderBasePath(t *testing.T) {
	cfg := testConfig()
	cfg.APIBasePath = "/api/v1"
	r, st := newRouter(t, cfg)
	before := storeLen(t, st)

	w := send(r, http.MethodPost, "/api/v1/products",
		`{"name":"Pen","description":"Blue ink","price":"1.5","category":"Stationery","inStock":true}`, withKey())
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", w.Code, w.Body.String())
	}
	var created domain.Product
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.Price != 1.5 || !created.InStock {
		t.Fatalf("created = %+v", created)
	}

	w = send(r, http.MethodGet, "/api/v1/products/"+created.ID, "", withKey())
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d", w.Code)
	}

	w = send(r, http.MethodPut, "/api/v1/products/"+created.ID,
		`{"name":"Pencil","description":"HB","price":0.5,"category":"Stationery"}`, withKey())
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"inStock":false`) {
		t.Fatalf("replace = %d %s", w.Code, w.Body.String())
	}

	w = send(r, http.MethodDelete, "/api/v1/products/"+created.ID, "", withKey())
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("delete = %d %q", w.Code, w.Body.String())
	}

	w = send(r, http.MethodGet, "/api/v1/products/"+created.ID, "", withKey())
	if w.Code != http.StatusNotFound || w.Body.String() != `{"error":"Product not found"}` {
		t.Fatalf("get after delete = %d %s", w.Code, w.Body.String())
	}
	if got := storeLen(t, st); got != before {
		t.Fatalf("store size = %d; want %d", got, before)
	}

	// unprefixed paths are not routed
	w = send(r, http.MethodGet, "/products", "", withKey())
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /products without base = %d; want 404", w.Code)
	}
}

func TestRegisterRoutes_ListQuery(t *testing.T) {
	r, _ := newRouter(t, testConfig())

	w := send(r, http.MethodGet, "/products?sort=-price&limit=2&page=1", "", withKey())
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d %s", w.Code, w.Body.String())
	}
	var page struct {
		Data       []domain.Product `json:"data"`
		Total      int              `json:"total"`
		Page       int              `json:"page"`
		Limit      int              `json:"limit"`
		TotalPages int              `json:"totalPages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 4 || page.TotalPages != 2 || len(page.Data) != 2 || page.Data[0].Name != "Running Shoes" {
		t.Fatalf("page = %+v", page)
	}

	w = send(r, http.MethodGet, "/products?sort=color", "", withKey())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid sort = %d; want 400", w.Code)
	}
}

func TestRegisterRoutes_BodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBodyBytes = 16
	r, st := newRouter(t, cfg)
	before := storeLen(t, st)

	w := send(r, http.MethodPost, "/products",
		`{"name":"Pen","description":"Blue ink","price":1.5,"category":"Stationery"}`, withKey())
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d; want 413 (%s)", w.Code, w.Body.String())
	}
	if got := storeLen(t, st); got != before {
		t.Fatalf("oversized body changed the store")
	}
}

func TestRegisterRoutes_StackOutsideProduction(t *testing.T) {
	cfg := testConfig()
	cfg.AppEnv = "development"
	r, _ := newRouter(t, cfg)

	w := send(r, http.MethodGet, "/products/missing", "", withKey())
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	var body handlers.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "Product not found" || body.Stack == "" {
		t.Fatalf("body = %+v; want message and stack", body)
	}
}

func TestRegisterRoutes_Swagger(t *testing.T) {
	cfg := testConfig()
	cfg.SwaggerEnabled = true
	r, _ := newRouter(t, cfg)

	w := send(r, http.MethodGet, "/swagger/doc.json", "", withKey())
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/products/{id}") {
		t.Fatalf("swagger doc = %d", w.Code)
	}

	r, _ = newRouter(t, testConfig())
	w = send(r, http.MethodGet, "/swagger/doc.json", "", withKey())
	if w.Code != http.StatusNotFound {
		t.Fatalf("swagger disabled = %d; want 404", w.Code)
	}
}

func TestRegisterRoutes_GzipWhenAccepted(t *testing.T) {
	r, _ := newRouter(t, testConfig())

	w := send(r, http.MethodGet, "/products", "", withKey("Accept-Encoding", "gzip"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding = %q; want gzip", got)
	}
}

func TestRegisterRoutes_NoContentIsNotEncoded(t *testing.T) {
	r, st := newRouter(t, testConfig())
	items, err := st.List(context.Background())
	if err != nil || len(items) == 0 {
		t.Fatalf("list: %v", err)
	}

	w := send(r, http.MethodDelete, "/products/"+items[0].ID, "", withKey("Accept-Encoding", "gzip"))
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("delete = %d len=%d", w.Code, w.Body.Len())
	}
	if got := w.Header().Get("Content-Encoding"); got != "" {
		t.Fatalf("Content-Encoding on empty 204 = %q", got)
	}
}

func TestRegisterRoutes_ConfiguredHeaderOptions(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	cfg := testConfig()
	cfg.Security.NoStore = true
	cfg.LogMaskHeaders = []string{"X-Tenant-Token"}
	r, _ := newRouter(t, cfg)

	w := send(r, http.MethodGet, "/health", "", withKey("X-Tenant-Token", "tenant-secret"))
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control = %q; want no-store", got)
	}
	logs := buf.String()
	if !strings.Contains(logs, `"X-Tenant-Token":"[REDACTED]"`) || strings.Contains(logs, "tenant-secret") {
		t.Fatalf("configured header not masked in access log: %s", logs)
	}

	r, _ = newRouter(t, testConfig())
	w = send(r, http.MethodGet, "/health", "", withKey())
	if got := w.Header().Get("Cache-Control"); got != "" {
		t.Fatalf("Cache-Control without no-store = %q", got)
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("short")))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 under the cap, got %d", w.Code)
	}
}

func Test_limitBody_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limitBody(0))
	r.POST("/echo", func(c *gin.Context) {
		b, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, "%d", len(b))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64))))
	if w.Code != http.StatusOK || w.Body.String() != "64" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	groupWithPrefix(r, "/").GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	groupWithPrefix(r, "").GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })
	groupWithPrefix(r, "/api").GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || rec.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, rec.Code, rec.Body.String())
		}
	}
}

func Test_basePath(t *testing.T) {
	if got := basePath(""); got != "/" {
		t.Fatalf("basePath(\"\") = %q", got)
	}
	if got := basePath("/api/v1"); got != "/api/v1" {
		t.Fatalf("basePath(/api/v1) = %q", got)
	}
}

func TestRegisterRoutes_HSTSBehindProxy(t *testing.T) {
	cfg := testConfig()
	cfg.Security = config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: time.Hour}
	r, _ := newRouter(t, cfg)

	w := send(r, http.MethodGet, "/health", "", withKey("X-Forwarded-Proto", "https"))
	if got := w.Header().Get("Strict-Transport-Security"); got != "max-age=3600; includeSubDomains; preload" {
		t.Fatalf("HSTS = %q", got)
	}
	w = send(r, http.MethodGet, "/health", "", withKey())
	if got := w.Header().Get("Strict-Transport-Security"); got != "" {
		t.Fatalf("HSTS on plain http = %q", got)
	}
}
