// Package oauth holds the external identity providers. Providers return
// identity facts only; user creation, linking and sessions live in the
// auth service.
package oauth

import (
	"fmt"

	"gatehouse/internal/domain"
)

type Registry struct {
	providers map[string]domain.OAuthProvider
}

// NewRegistry registers providers by name. Nil entries are skipped so
// unconfigured providers can be passed straight through.
func NewRegistry(list ...domain.OAuthProvider) *Registry {
	m := make(map[string]domain.OAuthProvider, len(list))
	for _, p := range list {
		if p == nil {
			continue
		}
		m[p.Name()] = p
	}
	return &Registry{providers: m}
}

func (r *Registry) Get(name string) (domain.OAuthProvider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, name)
	}
	return p, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
