package model

import "github.com/golang-jwt/jwt/v5"

// Claims is the signed token payload: subject (user id), jti, iat/exp from
// the registered claims, plus the user's role.
type Claims struct {
	jwt.RegisteredClaims
	Role Role `json:"role"`
}

// RevocationKey identifies a token in the revocation store. The subject is
// part of the key so a jti collision can never revoke another user's token.
func (c *Claims) RevocationKey() string {
	return c.Subject + "." + c.ID
}
