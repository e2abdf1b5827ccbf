// Package validator verifies bearer tokens against the identity provider's
// signing keys and decodes them into claim sets.
package validator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/castingworks/casting-agency/internal/auth"
)

// KeyFunc supplies the key set tokens are verified against. It is usually a
// jwks.CachingProvider's KeyFunc.
type KeyFunc func(ctx context.Context) (jwk.Set, error)

// Validator verifies compact-serialized signed tokens. The signature
// algorithm is fixed to RS256; issuer and audience must match exactly.
type Validator struct {
	keyFunc   KeyFunc
	algorithm jwa.SignatureAlgorithm
	issuer    string
	audience  string
	clock     func() time.Time
}

// New sets up a Validator with the required key function and the expected
// issuer and audience.
func New(keyFunc KeyFunc, issuer, audience string, opts ...Option) (*Validator, error) {
	if keyFunc == nil {
		return nil, errors.New("keyFunc is required but was nil")
	}
	if issuer == "" {
		return nil, errors.New("issuer is required but was empty")
	}
	if audience == "" {
		return nil, errors.New("audience is required but was empty")
	}

	v := &Validator{
		keyFunc:   keyFunc,
		algorithm: jwa.RS256,
		issuer:    issuer,
		audience:  audience,
		clock:     time.Now,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v, nil
}

// ValidateToken verifies the token's signature against the key identified by
// its kid header and validates the standard claims. Verification is a pure
// function of the token, the key set and the current time; every failure is
// reported as an *auth.Error.
func (v *Validator) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	set, err := v.keyFunc(ctx)
	if err != nil {
		var authErr *auth.Error
		if errors.As(err, &authErr) {
			return nil, err
		}
		return nil, auth.WrapError(auth.CodeJWKSFetchFailed, "Unable to fetch the signing keys.", http.StatusInternalServerError, err)
	}

	key, err := v.lookupKey(set, token)
	if err != nil {
		return nil, err
	}

	parsed, err := jwt.Parse([]byte(token), jwt.WithKey(v.algorithm, key), jwt.WithValidate(false))
	if err != nil {
		return nil, unparseable(err)
	}

	expiry := parsed.Expiration()
	if !expiry.IsZero() && !v.clock().Before(expiry) {
		return nil, auth.NewError(auth.CodeTokenExpired, "Token expired.", http.StatusUnauthorized)
	}

	if parsed.Issuer() != v.issuer || !containsAudience(parsed.Audience(), v.audience) {
		return nil, auth.NewError(auth.CodeInvalidClaims, "Incorrect claims. Please, check the audience and issuer.", http.StatusUnauthorized)
	}

	permissions, err := decodePermissions(parsed)
	if err != nil {
		return nil, err
	}

	claims := &auth.Claims{
		Issuer:      parsed.Issuer(),
		Subject:     parsed.Subject(),
		Audience:    parsed.Audience(),
		Permissions: permissions,
	}
	if !expiry.IsZero() {
		claims.Expiry = expiry.Unix()
	}
	if iat := parsed.IssuedAt(); !iat.IsZero() {
		claims.IssuedAt = iat.Unix()
	}

	return claims, nil
}

// lookupKey reads the token's unverified header and scans the key set for a
// key with a matching identifier.
func (v *Validator) lookupKey(set jwk.Set, token string) (jwk.Key, error) {
	msg, err := jws.Parse([]byte(token))
	if err != nil {
		return nil, unparseable(err)
	}

	signatures := msg.Signatures()
	if len(signatures) == 0 {
		return nil, unparseable(errors.New("token has no signature"))
	}
	headers := signatures[0].ProtectedHeaders()

	kid := headers.KeyID()
	if kid == "" {
		return nil, auth.NewError(auth.CodeInvalidHeader, "Authorization malformed.", http.StatusUnauthorized)
	}

	key, ok := set.LookupKeyID(kid)
	if !ok {
		return nil, auth.NewError(auth.CodeInvalidHeader, "Unable to find the appropriate key.", http.StatusBadRequest)
	}

	if alg := headers.Algorithm(); alg != v.algorithm {
		return nil, unparseable(fmt.Errorf("expected %q signing algorithm but token specified %q", v.algorithm, alg))
	}

	return key, nil
}

// decodePermissions pulls the permissions claim out of the verified payload.
// A nil result means the claim was absent; the permission guard decides
// whether that matters for the operation.
func decodePermissions(parsed jwt.Token) ([]string, error) {
	raw, ok := parsed.Get("permissions")
	if !ok {
		return nil, nil
	}

	entries, ok := raw.([]interface{})
	if !ok {
		return nil, unparseable(fmt.Errorf("permissions claim has type %T, expected array", raw))
	}

	permissions := make([]string, 0, len(entries))
	for _, entry := range entries {
		s, ok := entry.(string)
		if !ok {
			return nil, unparseable(fmt.Errorf("permissions claim contains a %T, expected string", entry))
		}
		permissions = append(permissions, s)
	}

	return permissions, nil
}

func unparseable(cause error) *auth.Error {
	return auth.WrapError(auth.CodeInvalidHeader, "Unable to parse authentication token.", http.StatusBadRequest, cause)
}

func containsAudience(audience []string, expected string) bool {
	for _, aud := range audience {
		if aud == expected {
			return true
		}
	}
	return false
}
