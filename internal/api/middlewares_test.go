package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talantix/portal/internal/entity"
)

func ipProbe(captured *string) http.Handler {
	return http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		*captured = entity.IPFromCtx(r.Context())
	})
}

func TestWithIP(t *testing.T) {
	t.Parallel()

	mw := NewMiddleware(nil, "ru")

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expected   string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "203.0.113.7:51234",
			expected:   "203.0.113.7",
		},
		{
			name:       "x-forwarded-for wins",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.9, 10.0.0.1"},
			expected:   "198.51.100.9",
		},
		{
			name:       "x-real-ip wins over x-forwarded-for",
			remoteAddr: "10.0.0.1:1234",
			headers: map[string]string{
				"X-Forwarded-For": "198.51.100.9",
				"X-Real-IP":       "192.0.2.33",
			},
			expected: "192.0.2.33",
		},
		{
			name:       "garbage forwarded header ignored",
			remoteAddr: "203.0.113.7:51234",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip"},
			expected:   "203.0.113.7",
		},
		{
			name:       "unparsable remote addr falls back",
			remoteAddr: "garbage",
			expected:   "unknown",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			var captured string

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = test.remoteAddr

			for k, v := range test.headers {
				req.Header.Set(k, v)
			}

			mw.WithIP(ipProbe(&captured)).ServeHTTP(httptest.NewRecorder(), req)

			require.Equal(t, test.expected, captured)
		})
	}
}

func TestWithLocale(t *testing.T) {
	t.Parallel()

	mw := NewMiddleware(nil, "ru")

	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{"no header uses default", "", "ru"},
		{"english accepted", "en-US,en;q=0.9", "en"},
		{"russian accepted", "ru-RU,ru;q=0.8", "ru"},
		{"unsupported falls back", "de-DE,de;q=0.9", "ru"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			var captured string

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if test.header != "" {
				req.Header.Set("Accept-Language", test.header)
			}

			probe := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				captured = entity.LocaleFromCtx(r.Context())
			})

			mw.WithLocale(probe).ServeHTTP(httptest.NewRecorder(), req)

			require.Equal(t, test.expected, captured)
		})
	}
}

type staticVerifier struct {
	claims *entity.UserClaims
	err    error
}

func (v *staticVerifier) VerifyToken(string, bool) (*entity.UserClaims, error) {
	return v.claims, v.err
}

func TestAuth_MissingHeader(t *testing.T) {
	t.Parallel()

	mw := NewMiddleware(&staticVerifier{}, "ru")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	mw.Auth(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	mw := NewMiddleware(nil, "ru")
	guard := mw.RequireRole(entity.RoleModerator, entity.RoleSuperAdmin)

	ran := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { ran = true })

	// no role in context means guest, which is refused
	rec := httptest.NewRecorder()
	guard(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.False(t, ran)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), entity.CtxKeyRole{}, entity.RoleModerator)

	rec = httptest.NewRecorder()
	guard(next).ServeHTTP(rec, req.WithContext(ctx))
	require.True(t, ran)
}
