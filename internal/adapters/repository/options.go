package repository

import "github.com/seambreak/gully/internal/domain/identity"

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithResolver sets the identity resolver used to map records to
// canonical players.
func WithResolver(r identity.Resolver) Option {
	return func(s *MemStore) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithInitialMultiplier sets the multiplier assigned to newly minted
// players.
func WithInitialMultiplier(m float64) Option {
	return func(s *MemStore) {
		if m > 0 {
			s.initialMultiplier = m
		}
	}
}
