package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func identityRouter(header string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/admin", RequireIdentity(header), func(c *gin.Context) {
		c.String(http.StatusOK, Identity(c))
	})
	return engine
}

func TestRequireIdentity(t *testing.T) {
	router := identityRouter("X-Authenticated-User")

	cases := []struct {
		name       string
		headers    map[string]string
		wantStatus int
		wantBody   string
	}{
		{"no header", nil, http.StatusUnauthorized, ""},
		{"empty header", map[string]string{"X-Authenticated-User": ""}, http.StatusUnauthorized, ""},
		{"configured header", map[string]string{"X-Authenticated-User": "admin@example.com"}, http.StatusOK, "admin@example.com"},
		{"legacy header", map[string]string{"CF-Access-Authenticated-User-Email": "legacy@example.com"}, http.StatusOK, "legacy@example.com"},
		{"configured wins over legacy", map[string]string{
			"X-Authenticated-User":               "admin@example.com",
			"CF-Access-Authenticated-User-Email": "legacy@example.com",
		}, http.StatusOK, "admin@example.com"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("got status %d, want %d", w.Code, tc.wantStatus)
			}
			if tc.wantBody != "" && w.Body.String() != tc.wantBody {
				t.Errorf("got identity %q, want %q", w.Body.String(), tc.wantBody)
			}
		})
	}
}

func TestIdentity_AbsentOnPublicRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/public", func(c *gin.Context) {
		c.String(http.StatusOK, "id=%q", Identity(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Body.String() != `id=""` {
		t.Errorf("got %s, want empty identity", w.Body.String())
	}
}
