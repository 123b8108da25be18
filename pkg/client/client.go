// Package client resolves the calling principal from a request: it
// turns verified JWT claims into the Caller the user service checks
// capabilities against.
package client

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tendant/simple-user-api/pkg/user"
)

// ExtraClaims carries the identity attributes embedded in a token
// beyond the registered claim set.
type ExtraClaims struct {
	Username  string          `json:"username,omitempty"`
	Roles     []string        `json:"roles,omitempty"`
	ExtraCaps map[string]bool `json:"extra_capabilities,omitempty"`
}

// CreateToken signs an HS256 token for the given caller. Used by the
// demo wiring and tests; production deployments normally receive
// tokens from an external issuer.
func CreateToken(secret string, caller user.Caller, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(caller.ID, 10),
		"iat": now.Unix(),
		"exp": now.Add(expiry).Unix(),
		"extra_claims": ExtraClaims{
			Username:  caller.Username,
			Roles:     caller.Roles,
			ExtraCaps: caller.ExtraCaps,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// callerFromClaims maps verified claims onto a Caller. Malformed or
// missing pieces degrade to the anonymous caller rather than erroring:
// authorization decisions belong to the capability checks downstream.
func callerFromClaims(claims map[string]any) user.Caller {
	var caller user.Caller

	switch sub := claims["sub"].(type) {
	case string:
		if id, err := strconv.ParseInt(sub, 10, 64); err == nil {
			caller.ID = id
		}
	case float64:
		caller.ID = int64(sub)
	}

	extra, ok := claims["extra_claims"].(map[string]any)
	if !ok {
		return caller
	}
	if username, ok := extra["username"].(string); ok {
		caller.Username = username
	}
	if rawRoles, ok := extra["roles"].([]any); ok {
		for _, r := range rawRoles {
			if name, ok := r.(string); ok {
				caller.Roles = append(caller.Roles, name)
			}
		}
	}
	if rawCaps, ok := extra["extra_capabilities"].(map[string]any); ok {
		caller.ExtraCaps = make(map[string]bool, len(rawCaps))
		for name, granted := range rawCaps {
			if b, ok := granted.(bool); ok && b {
				caller.ExtraCaps[name] = true
			}
		}
	}
	return caller
}
