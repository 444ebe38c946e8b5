package reqid_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/kapee/pkg/reqid"
)

func TestMiddleware(t *testing.T) {
	var seen string
	h := reqid.Middleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = reqid.FromCtx(r.Context())
	}))

	cases := map[string]struct {
		incoming string
		reused   bool
	}{
		"generated": {"", false},
		"reused":    {"client-42", true},
		"too long":  {strings.Repeat("x", 200), false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.incoming != "" {
				req.Header.Set(reqid.Header, tc.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get(reqid.Header))
			assert.Equal(t, tc.reused, seen == tc.incoming)
		})
	}
}
