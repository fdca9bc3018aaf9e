// Package identity defines the trusted identity contract. The engine
// never verifies credentials; an external provider (SSO proxy, gateway)
// authenticates the request and this package only reads the result.
package identity

import (
	"net/http"
	"strings"
)

// User is the authenticated caller as reported by the external provider.
type User struct {
	ID     string
	Email  string
	Groups []string
}

// InGroup reports whether the user belongs to the named group.
func (u *User) InGroup(group string) bool {
	if u == nil || group == "" {
		return false
	}
	for _, g := range u.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// Provider extracts the caller identity from a request. A nil User with a
// nil error means the request is anonymous.
type Provider interface {
	FromRequest(r *http.Request) (*User, error)
}

// HeaderProvider trusts identity headers injected by an authenticating
// reverse proxy: X-Auth-User, X-Auth-Email and a comma-separated
// X-Auth-Groups.
type HeaderProvider struct{}

func (HeaderProvider) FromRequest(r *http.Request) (*User, error) {
	id := r.Header.Get("X-Auth-User")
	if id == "" {
		return nil, nil
	}
	u := &User{
		ID:    id,
		Email: r.Header.Get("X-Auth-Email"),
	}
	if raw := r.Header.Get("X-Auth-Groups"); raw != "" {
		for _, g := range strings.Split(raw, ",") {
			if g = strings.TrimSpace(g); g != "" {
				u.Groups = append(u.Groups, g)
			}
		}
	}
	return u, nil
}
