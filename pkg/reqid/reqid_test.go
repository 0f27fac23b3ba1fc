package reqid_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/inventory/pkg/reqid"
)

func serve(header string) (seen string, echoed string) {
	h := reqid.Middleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = reqid.FromCtx(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(reqid.Header, header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec.Header().Get(reqid.Header)
}

func TestMiddlewareGeneratesID(t *testing.T) {
	seen, echoed := serve("")
	assert.Len(t, seen, 32)
	assert.Equal(t, seen, echoed)
}

func TestMiddlewareHonoursUpstreamID(t *testing.T) {
	seen, echoed := serve("gw-123")
	assert.Equal(t, "gw-123", seen)
	assert.Equal(t, "gw-123", echoed)
}

func TestMiddlewareRejectsHostileID(t *testing.T) {
	seen, _ := serve("bad id\nInjected: yes")
	assert.NotContains(t, seen, " ")

	seen, _ = serve(strings.Repeat("a", 100))
	assert.Len(t, seen, 32)
}
