package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func admitAll(claims *Claims) ValidateToken {
	return func(ctx context.Context, token string) (*Claims, error) {
		return claims, nil
	}
}

func rejectAll(err error) ValidateToken {
	return func(ctx context.Context, token string) (*Claims, error) {
		return nil, err
	}
}

func TestNew(t *testing.T) {
	t.Run("requires a validate function", func(t *testing.T) {
		_, err := New(nil)
		assert.ErrorIs(t, err, ErrValidateTokenNil)
	})

	t.Run("rejects nil option values", func(t *testing.T) {
		_, err := New(admitAll(&Claims{}), WithTokenExtractor(nil))
		assert.ErrorIs(t, err, ErrTokenExtractorNil)
	})
}

func TestMiddleware_RequirePermission(t *testing.T) {
	grantedClaims := &Claims{
		Subject:     "auth0|performer",
		Permissions: []string{"get:actors"},
	}

	testCases := []struct {
		name         string
		validate     ValidateToken
		permission   string
		header       string
		wantStatus   int
		wantCode     string
		wantAdmitted bool
	}{
		{
			name:         "admits a token with the required permission",
			validate:     admitAll(grantedClaims),
			permission:   "get:actors",
			header:       "Bearer good-token",
			wantStatus:   http.StatusOK,
			wantAdmitted: true,
		},
		{
			name:       "rejects a token without the required permission",
			validate:   admitAll(grantedClaims),
			permission: "post:actors",
			header:     "Bearer good-token",
			wantStatus: http.StatusForbidden,
			wantCode:   CodeUnauthorized,
		},
		{
			name:       "rejects when the header is missing",
			validate:   admitAll(grantedClaims),
			permission: "get:actors",
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeAuthHeaderMissing,
		},
		{
			name:       "rejects a scheme without a token",
			validate:   admitAll(grantedClaims),
			permission: "get:actors",
			header:     "Bearer",
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeInvalidHeader,
		},
		{
			name:       "propagates the validator's failure",
			validate:   rejectAll(NewError(CodeTokenExpired, "Token expired.", http.StatusUnauthorized)),
			permission: "get:actors",
			header:     "Bearer expired-token",
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeTokenExpired,
		},
		{
			name:       "wraps non-taxonomy validator failures",
			validate:   rejectAll(context.DeadlineExceeded),
			permission: "get:actors",
			header:     "Bearer some-token",
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidHeader,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			m, err := New(testCase.validate)
			require.NoError(t, err)

			handlerRan := false
			var gotClaims *Claims
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerRan = true
				gotClaims, _ = ClaimsFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			r := httptest.NewRequest(http.MethodGet, "/actors", nil)
			if testCase.header != "" {
				r.Header.Set("Authorization", testCase.header)
			}
			w := httptest.NewRecorder()

			m.RequirePermission(testCase.permission, next).ServeHTTP(w, r)

			assert.Equal(t, testCase.wantStatus, w.Code)
			assert.Equal(t, testCase.wantAdmitted, handlerRan)

			if testCase.wantAdmitted {
				if diff := cmp.Diff(grantedClaims, gotClaims); diff != "" {
					t.Fatalf("claims mismatch (-want +got):\n%s", diff)
				}
				return
			}

			var body struct {
				Code string `json:"code"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, testCase.wantCode, body.Code)
		})
	}
}

func TestMiddleware_RequirePermissionGin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m, err := New(admitAll(&Claims{Subject: "auth0|performer", Permissions: []string{"get:actors"}}))
	require.NoError(t, err)

	engine := gin.New()
	engine.GET("/actors", m.RequirePermissionGin("get:actors"), func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c.Request.Context())
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"subject": claims.Subject})
	})

	t.Run("admitted request reaches the handler with claims", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/actors", nil)
		r.Header.Set("Authorization", "Bearer good-token")
		w := httptest.NewRecorder()

		engine.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"subject":"auth0|performer"}`, w.Body.String())
	})

	t.Run("rejected request never reaches the handler", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/actors", nil)
		w := httptest.NewRecorder()

		engine.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), CodeAuthHeaderMissing)
	})
}

func TestClaimsFromContext(t *testing.T) {
	_, ok := ClaimsFromContext(context.Background())
	assert.False(t, ok)

	claims := &Claims{Subject: "auth0|performer"}
	ctx := ContextWithClaims(context.Background(), claims)
	got, ok := ClaimsFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, claims, got)
}
