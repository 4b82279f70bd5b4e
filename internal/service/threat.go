package service

import (
	"strings"

	"github.com/secureops-systems/secureops/internal/attribution"
)

// ThreatService serves read-only threat-actor reference data.
type ThreatService struct {
	engine *attribution.Engine
}

func NewThreatService(engine *attribution.Engine) *ThreatService {
	return &ThreatService{engine: engine}
}

// ListActors returns the loaded actor profiles, optionally filtered by
// country and/or a case-insensitive name or alias substring.
func (s *ThreatService) ListActors(country, search string) []attribution.Profile {
	profiles := s.engine.Profiles()
	search = strings.ToLower(search)

	out := []attribution.Profile{}
	for _, p := range profiles {
		if country != "" && !strings.EqualFold(p.Country, country) {
			continue
		}
		if search != "" && !matchesActor(&p, search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesActor(p *attribution.Profile, search string) bool {
	if strings.Contains(strings.ToLower(p.Name), search) {
		return true
	}
	for _, alias := range p.Aliases {
		if strings.Contains(strings.ToLower(alias), search) {
			return true
		}
	}
	return false
}

// GetActor returns the profile whose name or alias matches, or nil.
func (s *ThreatService) GetActor(name string) *attribution.Profile {
	return s.engine.FindProfile(name)
}
