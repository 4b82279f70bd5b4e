// Package attribution correlates an incident's indicators and description
// against known threat-actor profiles and produces ranked candidate
// matches. Analysis is stateless and side-effect free: it reads the loaded
// profile set and its inputs, and mutates neither, so a single Engine is
// safe for concurrent use across requests.
package attribution

import (
	"fmt"
	"sort"
	"strings"
)

// Scoring weights per matched evidence kind.
const (
	categoryPoints = 10
	keywordPoints  = 15
	domainPoints   = 25
	ipPoints       = 20
	hashPoints     = 30
)

// Confidence tier thresholds.
const (
	highConfidenceScore   = 50
	mediumConfidenceScore = 25
)

// Match is one scored candidate actor. Matches are ephemeral: they are
// recomputed per analysis request and never persisted.
type Match struct {
	Actor      string   `json:"actor"`
	Score      int      `json:"score"`
	Confidence string   `json:"confidence"`
	Indicators []string `json:"indicators"`
	Profile    *Profile `json:"profile,omitempty"`
}

// Engine evaluates incidents against a fixed profile set.
type Engine struct {
	profiles []Profile
}

// NewEngine creates an engine over the given profiles. The slice order is
// preserved and used as the tie-break order for equal scores.
func NewEngine(profiles []Profile) *Engine {
	return &Engine{profiles: profiles}
}

// Profiles returns the loaded profile set.
func (e *Engine) Profiles() []Profile {
	return e.profiles
}

// FindProfile returns the profile whose name or alias matches name
// case-insensitively, or nil.
func (e *Engine) FindProfile(name string) *Profile {
	for i := range e.profiles {
		p := &e.profiles[i]
		if strings.EqualFold(p.Name, name) {
			return p
		}
		for _, alias := range p.Aliases {
			if strings.EqualFold(alias, name) {
				return p
			}
		}
	}
	return nil
}

// Analyze scores every profile against the incident's indicators (grouped
// by IOC type), its type string, and its free-text description. Only
// actors with a positive score are returned, ordered by descending score;
// ties keep profile declaration order so results are reproducible. Empty
// input is valid and yields an empty (non-nil) result.
func (e *Engine) Analyze(iocs map[string][]string, incidentType, description string) []Match {
	matches := []Match{}
	descLower := strings.ToLower(description)

	for i := range e.profiles {
		profile := &e.profiles[i]
		score := 0
		var evidence []string

		// Incident-type category hits.
		for _, category := range profile.Categories {
			if incidentType != "" && strings.Contains(incidentType, category) {
				score += categoryPoints
				evidence = append(evidence, fmt.Sprintf("Incident type matches known %s TTPs", profile.Name))
			}
		}

		// Tool/TTP keywords in the description. Each distinct keyword is
		// awarded once regardless of how often it appears.
		seen := make(map[string]bool)
		for _, keyword := range append(append([]string{}, profile.Tools...), profile.TTPs...) {
			kw := strings.ToLower(keyword)
			if seen[kw] {
				continue
			}
			seen[kw] = true
			if kw != "" && strings.Contains(descLower, kw) {
				score += keywordPoints
				evidence = append(evidence, fmt.Sprintf("Description mentions %q", kw))
			}
		}

		// Domain infrastructure substrings.
		for _, domain := range iocs["domain"] {
			for _, pattern := range profile.DomainPatterns {
				if strings.Contains(domain, pattern) {
					score += domainPoints
					evidence = append(evidence, fmt.Sprintf("Domain pattern matches %s infrastructure", profile.Name))
					break
				}
			}
		}

		// IP range prefixes.
		for _, ip := range iocs["ip"] {
			for _, prefix := range profile.IPPrefixes {
				if strings.HasPrefix(ip, prefix) {
					score += ipPoints
					evidence = append(evidence, fmt.Sprintf("IP address in known %s range", profile.Name))
					break
				}
			}
		}

		// Known malware hash prefixes.
		for _, hash := range iocs["hash"] {
			hashLower := strings.ToLower(hash)
			for _, prefix := range profile.HashPrefixes {
				if strings.HasPrefix(hashLower, prefix) {
					score += hashPoints
					evidence = append(evidence, fmt.Sprintf("File hash matches known %s malware", profile.Name))
					break
				}
			}
		}

		if score > 0 {
			matches = append(matches, Match{
				Actor:      profile.Name,
				Score:      score,
				Confidence: confidenceTier(score),
				Indicators: evidence,
				Profile:    profile,
			})
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})

	return matches
}

func confidenceTier(score int) string {
	switch {
	case score >= highConfidenceScore:
		return "high"
	case score >= mediumConfidenceScore:
		return "medium"
	default:
		return "low"
	}
}
