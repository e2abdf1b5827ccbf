package auth

import "strings"

// Claims is the decoded payload of a verified access token. It is only ever
// constructed by the token validator; handlers receive it through the request
// context and must treat it as read-only.
type Claims struct {
	Issuer   string
	Subject  string
	Audience []string
	Expiry   int64
	IssuedAt int64

	// Permissions holds the token's granted permission strings. A nil slice
	// means the token carried no permissions claim at all, which is distinct
	// from an empty (but present) claim.
	Permissions []string
}

// HasPermission reports whether the claim set grants the given permission.
// Granted permissions are compared after trimming surrounding whitespace.
func (c *Claims) HasPermission(permission string) bool {
	for _, granted := range c.Permissions {
		if strings.TrimSpace(granted) == permission {
			return true
		}
	}
	return false
}
