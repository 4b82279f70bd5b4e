package models

import (
	"regexp"
	"strings"
	"time"
)

// IOC represents an indicator of compromise attached to an incident.
// The (type, value) pair is unique across the whole store.
type IOC struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"` // ip, domain, hash, email, url, cve, other
	Value      string     `json:"value"`
	HashType   *string    `json:"hash_type,omitempty"` // md5, sha1, sha256 (hash IOCs only)
	Confidence string     `json:"confidence"`          // low, medium, high
	Tags       []string   `json:"tags"`
	Notes      string     `json:"notes,omitempty"`
	IsActive   bool       `json:"is_active"`
	IncidentID string     `json:"incident_id"`
	CreatedBy  string     `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

var (
	schemeRe = regexp.MustCompile(`^https?://`)

	iocValueRe = map[string]*regexp.Regexp{
		"ip":     regexp.MustCompile(`^(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)$`),
		"domain": regexp.MustCompile(`^(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`),
		"hash":   regexp.MustCompile(`^[a-f0-9]{32}$|^[a-f0-9]{40}$|^[a-f0-9]{64}$`),
		"email":  regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`),
		"url":    regexp.MustCompile(`^https?://.+`),
		"cve":    regexp.MustCompile(`^(?i)CVE-\d{4}-\d{4,}$`),
	}
)

// Normalize canonicalizes the value in place according to the IOC type.
// Hash IOCs are additionally length-classified into HashType.
func (i *IOC) Normalize() {
	i.Value = strings.TrimSpace(i.Value)

	switch i.Type {
	case "domain":
		i.Value = strings.ToLower(i.Value)
		i.Value = schemeRe.ReplaceAllString(i.Value, "")
		if idx := strings.IndexByte(i.Value, '/'); idx >= 0 {
			i.Value = i.Value[:idx]
		}
	case "url", "email":
		i.Value = strings.ToLower(i.Value)
	case "hash":
		i.Value = strings.ToLower(strings.Join(strings.Fields(i.Value), ""))
		if i.HashType == nil {
			var ht string
			switch len(i.Value) {
			case 32:
				ht = "md5"
			case 40:
				ht = "sha1"
			case 64:
				ht = "sha256"
			}
			if ht != "" {
				i.HashType = &ht
			}
		}
	}
}

// ValidValue reports whether the (already normalized) value is plausible
// for the IOC type. Types without a known shape always validate.
func (i *IOC) ValidValue() bool {
	re, ok := iocValueRe[i.Type]
	if !ok {
		return true
	}
	return re.MatchString(i.Value)
}

// CreateIOCRequest represents the request to register a new indicator
type CreateIOCRequest struct {
	Type       string   `json:"type"`
	Value      string   `json:"value"`
	IncidentID string   `json:"incident_id"`
	Confidence string   `json:"confidence,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// UpdateIOCRequest represents a partial indicator update
type UpdateIOCRequest struct {
	Confidence *string  `json:"confidence,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
	IsActive   *bool    `json:"is_active,omitempty"`
}

// ListIOCsRequest represents query parameters for listing indicators
type ListIOCsRequest struct {
	Page       int
	Limit      int
	Type       string
	IncidentID string
	Search     string
}

// ListIOCsResponse represents the response for listing indicators
type ListIOCsResponse struct {
	IOCs       []*IOC     `json:"iocs"`
	Pagination Pagination `json:"pagination"`
}
