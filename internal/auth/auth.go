// Package auth resolves opaque bearer tokens to principals. Tokens are
// provisioned out of band; this package only answers who a token
// belongs to and what role they hold.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/veridex/authenticity-analyzer/pkg/fault"
)

const stage = "auth"

// Roles a principal can hold. Admins may read and analyze any job;
// users only their own.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Principal is an authenticated caller.
type Principal struct {
	UserID string
	Role   string
}

func (p Principal) Admin() bool { return p.Role == RoleAdmin }

// CanAccess reports whether the principal may act on a resource owned
// by ownerID.
func (p Principal) CanAccess(ownerID string) bool {
	return p.Admin() || p.UserID == ownerID
}

// Resolver verifies a bearer token.
type Resolver interface {
	Verify(ctx context.Context, token string) (Principal, error)
}

// StaticResolver verifies tokens against a fixed map loaded from
// configuration.
type StaticResolver struct {
	tokens map[string]Principal
}

func NewStaticResolver(tokens map[string]Principal) *StaticResolver {
	copied := make(map[string]Principal, len(tokens))
	for token, principal := range tokens {
		copied[token] = principal
	}
	return &StaticResolver{tokens: copied}
}

func (r *StaticResolver) Verify(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, fault.New(fault.Authorization, stage, fmt.Errorf("missing token"))
	}
	principal, ok := r.tokens[token]
	if !ok {
		return Principal{}, fault.New(fault.Authorization, stage, fmt.Errorf("unknown token"))
	}
	return principal, nil
}

var _ Resolver = (*StaticResolver)(nil)

// ParseTokens parses a comma-separated "token:user_id:role" list, the
// form the AUTH_TOKENS environment variable uses.
func ParseTokens(spec string) (map[string]Principal, error) {
	tokens := make(map[string]Principal)
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("malformed token entry %q: want token:user_id:role", entry)
		}
		token, userID, role := parts[0], parts[1], parts[2]
		if token == "" || userID == "" {
			return nil, fmt.Errorf("malformed token entry %q: empty token or user id", entry)
		}
		if role != RoleUser && role != RoleAdmin {
			return nil, fmt.Errorf("malformed token entry %q: unknown role %q", entry, role)
		}
		tokens[token] = Principal{UserID: userID, Role: role}
	}
	return tokens, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
