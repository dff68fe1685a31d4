package provider

import "errors"

var ErrProviderNotConfigured = errors.New("provider is not configured")

type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	items := make(map[string]Provider, len(providers))
	for _, p := range providers {
		if p == nil {
			continue
		}
		items[p.Name()] = p
	}
	return &Registry{providers: items}
}

func (r *Registry) Get(name string) (Provider, error) {
	provider, ok := r.providers[name]
	if !ok {
		return nil, ErrProviderNotConfigured
	}
	return provider, nil
}

func (r *Registry) Has(name string) bool {
	_, ok := r.providers[name]
	return ok
}
