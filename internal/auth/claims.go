package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

const permissionsClaim = "permissions"

// Claims is the decoded claim set of a verified token. A value only
// exists once signature, expiry, audience and issuer have passed.
type Claims map[string]interface{}

// Subject returns the "sub" claim, or "" when absent
func (c Claims) Subject() string {
	sub, err := jwt.MapClaims(c).GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// Issuer returns the "iss" claim, or "" when absent
func (c Claims) Issuer() string {
	iss, err := jwt.MapClaims(c).GetIssuer()
	if err != nil {
		return ""
	}
	return iss
}

// Permissions returns the "permissions" claim. ok is false when the claim
// is absent or is not an array of strings.
func (c Claims) Permissions() (perms []string, ok bool) {
	raw, present := c[permissionsClaim]
	if !present {
		return nil, false
	}

	switch v := raw.(type) {
	case []string:
		return v, true
	case []interface{}:
		perms = make([]string, 0, len(v))
		for _, p := range v {
			s, isString := p.(string)
			if !isString {
				return nil, false
			}
			perms = append(perms, s)
		}
		return perms, true
	default:
		return nil, false
	}
}
