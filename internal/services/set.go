package services

import "zheliyou/internal/backend"

// Set bundles every service over one backend client.
type Set struct {
	Auth        AuthService
	Users       UserService
	Trips       TripService
	Matches     MatchService
	Attractions AttractionService
	Realtime    RealtimeService
	Docs        DocsService
	Seed        SeedService
}

func NewSet(b backend.Client) Set {
	return Set{
		Auth:        AuthService{Backend: b},
		Users:       UserService{Backend: b},
		Trips:       TripService{Backend: b},
		Matches:     MatchService{Backend: b},
		Attractions: AttractionService{Backend: b},
		Realtime:    RealtimeService{Backend: b},
		Docs:        DocsService{Backend: b},
		Seed:        SeedService{Backend: b},
	}
}

// WithToken returns the set rebound to the principal owning token.
// A blank token returns s unchanged.
func (s Set) WithToken(token string) Set {
	if token == "" || s.Auth.Backend == nil {
		return s
	}
	return NewSet(s.Auth.Backend.WithToken(token))
}
