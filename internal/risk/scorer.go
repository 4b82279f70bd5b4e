// Package risk computes the derived 0-100 risk score for an incident.
// Scoring is purely additive over severity, incident type, status urgency,
// and age, so it is safe to call concurrently and trivially reproducible.
package risk

const (
	// MaxScore is the ceiling for any computed risk score.
	MaxScore = 100

	// maxAgePoints caps the contribution of incident age.
	maxAgePoints = 10
)

var severityWeights = map[string]int{
	"critical": 40,
	"high":     30,
	"medium":   20,
	"low":      10,
}

var typeWeights = map[string]int{
	"ransomware":   30,
	"data-breach":  30,
	"apt":          25,
	"supply-chain": 25,
	"malware":      20,
	"insider":      20,
	"phishing":     15,
	"ddos":         15,
	"defacement":   10,
	"other":        10,
}

var statusWeights = map[string]int{
	"open":          20,
	"investigating": 20,
	"containment":   10,
	"eradication":   10,
}

// Score returns the risk score for the given incident attributes, clamped
// to [0, MaxScore]. Unknown severity, type, or status values contribute
// zero rather than failing: an unrecognized enum is scored like "other",
// not rejected. Age only counts while the incident is unresolved and is
// capped at maxAgePoints; negative daysOpen is treated as zero.
func Score(severity, incidentType, status string, daysOpen int) int {
	score := severityWeights[severity]
	score += typeWeights[incidentType]
	score += statusWeights[status]

	if status != "resolved" && status != "closed" {
		if daysOpen < 0 {
			daysOpen = 0
		}
		if daysOpen > maxAgePoints {
			daysOpen = maxAgePoints
		}
		score += daysOpen
	}

	if score > MaxScore {
		score = MaxScore
	}
	if score < 0 {
		score = 0
	}
	return score
}
