package validator

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castingworks/casting-agency/internal/auth"
)

const (
	testIssuer   = "https://agency.eu.auth0.com/"
	testAudience = "https://casting-agency-api/"
	testSubject  = "auth0|performer"
	testKeyID    = "test-key-1"
)

type signingKey struct {
	private jwk.Key
	set     jwk.Set
}

// newSigningKey generates an RSA key pair and the key set its public half
// is published in.
func newSigningKey(t *testing.T, kid string) *signingKey {
	t.Helper()

	rawKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	private, err := jwk.FromRaw(rawKey)
	require.NoError(t, err)
	if kid != "" {
		require.NoError(t, private.Set(jwk.KeyIDKey, kid))
	}

	public, err := jwk.FromRaw(&rawKey.PublicKey)
	require.NoError(t, err)
	if kid != "" {
		require.NoError(t, public.Set(jwk.KeyIDKey, kid))
	}

	set := jwk.NewSet()
	require.NoError(t, set.AddKey(public))

	return &signingKey{private: private, set: set}
}

type tokenSpec struct {
	issuer      string
	audience    string
	expiry      time.Time
	permissions any
	noExpiry    bool
}

func (k *signingKey) sign(t *testing.T, spec tokenSpec) string {
	t.Helper()

	builder := jwt.NewBuilder().
		Issuer(spec.issuer).
		Subject(testSubject).
		Audience([]string{spec.audience}).
		IssuedAt(time.Now())
	if !spec.noExpiry {
		builder = builder.Expiration(spec.expiry)
	}
	if spec.permissions != nil {
		builder = builder.Claim("permissions", spec.permissions)
	}

	token, err := builder.Build()
	require.NoError(t, err)

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.RS256, k.private))
	require.NoError(t, err)
	return string(signed)
}

func keyFuncFor(set jwk.Set) KeyFunc {
	return func(ctx context.Context) (jwk.Set, error) {
		return set, nil
	}
}

func goodSpec() tokenSpec {
	return tokenSpec{
		issuer:      testIssuer,
		audience:    testAudience,
		expiry:      time.Now().Add(time.Hour),
		permissions: []string{"get:actors"},
	}
}

func TestNew(t *testing.T) {
	key := newSigningKey(t, testKeyID)

	testCases := []struct {
		name     string
		keyFunc  KeyFunc
		issuer   string
		audience string
	}{
		{name: "nil keyFunc", issuer: testIssuer, audience: testAudience},
		{name: "empty issuer", keyFunc: keyFuncFor(key.set), audience: testAudience},
		{name: "empty audience", keyFunc: keyFuncFor(key.set), issuer: testIssuer},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := New(testCase.keyFunc, testCase.issuer, testCase.audience)
			assert.Error(t, err)
		})
	}
}

func TestValidator_ValidateToken(t *testing.T) {
	key := newSigningKey(t, testKeyID)

	v, err := New(keyFuncFor(key.set), testIssuer, testAudience)
	require.NoError(t, err)

	t.Run("valid token produces the decoded claim set", func(t *testing.T) {
		spec := goodSpec()
		claims, err := v.ValidateToken(context.Background(), key.sign(t, spec))
		require.NoError(t, err)

		assert.Equal(t, testIssuer, claims.Issuer)
		assert.Equal(t, testSubject, claims.Subject)
		assert.Equal(t, []string{testAudience}, claims.Audience)
		assert.Equal(t, spec.expiry.Unix(), claims.Expiry)
		assert.Equal(t, []string{"get:actors"}, claims.Permissions)
	})

	t.Run("token without permissions claim decodes with nil permissions", func(t *testing.T) {
		spec := goodSpec()
		spec.permissions = nil
		claims, err := v.ValidateToken(context.Background(), key.sign(t, spec))
		require.NoError(t, err)
		assert.Nil(t, claims.Permissions)
	})

	t.Run("token without expiry skips the expiry check", func(t *testing.T) {
		spec := goodSpec()
		spec.noExpiry = true
		claims, err := v.ValidateToken(context.Background(), key.sign(t, spec))
		require.NoError(t, err)
		assert.Zero(t, claims.Expiry)
	})

	t.Run("expired token", func(t *testing.T) {
		spec := goodSpec()
		spec.expiry = time.Now().Add(-time.Minute)
		_, err := v.ValidateToken(context.Background(), key.sign(t, spec))
		assertAuthError(t, err, auth.CodeTokenExpired, http.StatusUnauthorized)
	})

	t.Run("token expiring exactly now is expired", func(t *testing.T) {
		now := time.Now().Truncate(time.Second)
		frozen, err := New(keyFuncFor(key.set), testIssuer, testAudience,
			WithClock(func() time.Time { return now }))
		require.NoError(t, err)

		spec := goodSpec()
		spec.expiry = now
		_, err = frozen.ValidateToken(context.Background(), key.sign(t, spec))
		assertAuthError(t, err, auth.CodeTokenExpired, http.StatusUnauthorized)
	})

	t.Run("wrong audience", func(t *testing.T) {
		spec := goodSpec()
		spec.audience = "https://some-other-api/"
		_, err := v.ValidateToken(context.Background(), key.sign(t, spec))
		assertAuthError(t, err, auth.CodeInvalidClaims, http.StatusUnauthorized)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		spec := goodSpec()
		spec.issuer = "https://rogue.example.com/"
		_, err := v.ValidateToken(context.Background(), key.sign(t, spec))
		assertAuthError(t, err, auth.CodeInvalidClaims, http.StatusUnauthorized)
	})

	t.Run("token without key id", func(t *testing.T) {
		anonymous := newSigningKey(t, "")
		_, err := v.ValidateToken(context.Background(), anonymous.sign(t, goodSpec()))
		assertAuthError(t, err, auth.CodeInvalidHeader, http.StatusUnauthorized)
	})

	t.Run("key id not in the key set", func(t *testing.T) {
		stranger := newSigningKey(t, "unknown-key")
		_, err := v.ValidateToken(context.Background(), stranger.sign(t, goodSpec()))
		assertAuthError(t, err, auth.CodeInvalidHeader, http.StatusBadRequest)
	})

	t.Run("signature from a different key with a matching key id", func(t *testing.T) {
		impostor := newSigningKey(t, testKeyID)
		_, err := v.ValidateToken(context.Background(), impostor.sign(t, goodSpec()))
		assertAuthError(t, err, auth.CodeInvalidHeader, http.StatusBadRequest)
	})

	t.Run("token signed with a different algorithm", func(t *testing.T) {
		secret, err := jwk.FromRaw([]byte("a-256-bit-secret-padded-to-size!"))
		require.NoError(t, err)
		require.NoError(t, secret.Set(jwk.KeyIDKey, testKeyID))

		token, err := jwt.NewBuilder().
			Issuer(testIssuer).
			Audience([]string{testAudience}).
			Expiration(time.Now().Add(time.Hour)).
			Build()
		require.NoError(t, err)
		signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, secret))
		require.NoError(t, err)

		_, err = v.ValidateToken(context.Background(), string(signed))
		assertAuthError(t, err, auth.CodeInvalidHeader, http.StatusBadRequest)
	})

	t.Run("unknown key id wins over a wrong algorithm", func(t *testing.T) {
		secret, err := jwk.FromRaw([]byte("a-256-bit-secret-padded-to-size!"))
		require.NoError(t, err)
		require.NoError(t, secret.Set(jwk.KeyIDKey, "unknown-key"))

		token, err := jwt.NewBuilder().
			Issuer(testIssuer).
			Audience([]string{testAudience}).
			Expiration(time.Now().Add(time.Hour)).
			Build()
		require.NoError(t, err)
		signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, secret))
		require.NoError(t, err)

		_, err = v.ValidateToken(context.Background(), string(signed))
		assertAuthError(t, err, auth.CodeInvalidHeader, http.StatusBadRequest)

		var authErr *auth.Error
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "Unable to find the appropriate key.", authErr.Description)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := v.ValidateToken(context.Background(), "not.a.token")
		assertAuthError(t, err, auth.CodeInvalidHeader, http.StatusBadRequest)
	})

	t.Run("malformed permissions claim", func(t *testing.T) {
		spec := goodSpec()
		spec.permissions = []any{"get:actors", 42}
		_, err := v.ValidateToken(context.Background(), key.sign(t, spec))
		assertAuthError(t, err, auth.CodeInvalidHeader, http.StatusBadRequest)
	})

	t.Run("keyFunc failure is propagated unchanged", func(t *testing.T) {
		fetchErr := auth.NewError(auth.CodeJWKSFetchFailed, "Unable to fetch the signing keys.", http.StatusInternalServerError)
		failing, err := New(func(ctx context.Context) (jwk.Set, error) {
			return nil, fetchErr
		}, testIssuer, testAudience)
		require.NoError(t, err)

		_, err = failing.ValidateToken(context.Background(), key.sign(t, goodSpec()))
		assert.Equal(t, fetchErr, err)
	})

	t.Run("non-taxonomy keyFunc failure becomes jwks_fetch_failed", func(t *testing.T) {
		failing, err := New(func(ctx context.Context) (jwk.Set, error) {
			return nil, errors.New("boom")
		}, testIssuer, testAudience)
		require.NoError(t, err)

		_, err = failing.ValidateToken(context.Background(), key.sign(t, goodSpec()))
		assertAuthError(t, err, auth.CodeJWKSFetchFailed, http.StatusInternalServerError)
	})
}

func assertAuthError(t *testing.T, err error, wantCode string, wantStatus int) {
	t.Helper()

	var authErr *auth.Error
	require.True(t, errors.As(err, &authErr), "wanted *auth.Error, got %v", err)
	assert.Equal(t, wantCode, authErr.Code)
	assert.Equal(t, wantStatus, authErr.Status)
}
