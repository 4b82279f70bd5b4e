package service

import "errors"

var (
	// ErrForbidden is returned when the caller is not allowed to
	// perform the operation on the target resource.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials is returned for a failed login. It covers
	// unknown accounts, wrong passwords, and deactivated users so the
	// response does not leak which one applied.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var validSeverities = map[string]bool{
	"critical": true,
	"high":     true,
	"medium":   true,
	"low":      true,
}

var validIncidentTypes = map[string]bool{
	"ransomware":   true,
	"phishing":     true,
	"malware":      true,
	"ddos":         true,
	"data-breach":  true,
	"defacement":   true,
	"apt":          true,
	"insider":      true,
	"supply-chain": true,
	"other":        true,
}

var validStatuses = map[string]bool{
	"open":          true,
	"investigating": true,
	"containment":   true,
	"eradication":   true,
	"recovery":      true,
	"resolved":      true,
	"closed":        true,
}

var validIOCTypes = map[string]bool{
	"ip":     true,
	"domain": true,
	"hash":   true,
	"email":  true,
	"url":    true,
	"cve":    true,
	"other":  true,
}

var validConfidences = map[string]bool{
	"low":    true,
	"medium": true,
	"high":   true,
}

var validEventTypes = map[string]bool{
	"detection":     true,
	"response":      true,
	"containment":   true,
	"investigation": true,
	"recovery":      true,
	"update":        true,
	"escalation":    true,
	"other":         true,
}

var validRoles = map[string]bool{
	"admin":   true,
	"analyst": true,
	"viewer":  true,
}

// notificationSeverity maps an incident severity to the visual severity
// of the notifications it generates.
func notificationSeverity(incidentSeverity string) string {
	switch incidentSeverity {
	case "critical", "high":
		return "danger"
	case "medium":
		return "warning"
	default:
		return "info"
	}
}
