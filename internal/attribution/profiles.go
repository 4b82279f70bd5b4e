package attribution

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile describes a known threat actor. Profiles are read-only reference
// data: they are loaded once at startup (from YAML or the compiled-in
// defaults) and never mutated by analysis.
type Profile struct {
	Name           string   `yaml:"name" json:"name"`
	Aliases        []string `yaml:"aliases" json:"aliases"`
	Country        string   `yaml:"country" json:"country"`
	Motivation     string   `yaml:"motivation" json:"motivation"`
	Sophistication string   `yaml:"sophistication" json:"sophistication"`
	Targets        []string `yaml:"targets" json:"targets"`
	TTPs           []string `yaml:"ttps" json:"ttps"`
	Tools          []string `yaml:"tools" json:"tools"`

	// Categories are incident-type keywords this actor is known for.
	// An incident type containing one of these keywords scores a hit.
	Categories []string `yaml:"categories" json:"categories"`

	// Heuristic infrastructure patterns matched against IOC values.
	DomainPatterns []string `yaml:"domain_patterns" json:"domain_patterns"`
	IPPrefixes     []string `yaml:"ip_prefixes" json:"ip_prefixes"`
	HashPrefixes   []string `yaml:"hash_prefixes" json:"hash_prefixes"`

	// Tiered observables used as analyst-facing reference material.
	ConfidenceIndicators ConfidenceIndicators `yaml:"confidence_indicators" json:"confidence_indicators"`
}

// ConfidenceIndicators groups known observables by attribution strength.
type ConfidenceIndicators struct {
	High   []string `yaml:"high" json:"high"`
	Medium []string `yaml:"medium" json:"medium"`
	Low    []string `yaml:"low" json:"low"`
}

// LoadFile reads a profile set from a YAML file.
func LoadFile(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	var doc struct {
		Actors []Profile `yaml:"actors"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	if len(doc.Actors) == 0 {
		return nil, fmt.Errorf("profiles file %s contains no actors", path)
	}

	for i := range doc.Actors {
		if doc.Actors[i].Name == "" {
			return nil, fmt.Errorf("profiles file %s: actor %d has no name", path, i)
		}
	}

	return doc.Actors, nil
}

// DefaultProfiles returns the compiled-in actor set. The declaration order
// here is the tie-break order for equal attribution scores.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Name:           "APT28",
			Aliases:        []string{"Fancy Bear", "Sofacy", "Sednit", "STRONTIUM"},
			Country:        "Russia",
			Motivation:     "espionage",
			Sophistication: "advanced",
			Targets:        []string{"Government", "Military", "Defense", "Aerospace"},
			TTPs:           []string{"Spear-phishing", "Zero-day exploits", "Credential harvesting", "Watering hole attacks"},
			Tools:          []string{"X-Agent", "X-Tunnel", "Sofacy", "CHOPSTICK", "GAMEFISH"},
			Categories:     []string{"phishing", "zero-day"},
			DomainPatterns: []string{".space", "relay.com", "microsoft"},
			IPPrefixes:     []string{"185.", "95.142"},
			HashPrefixes:   []string{"3f7e", "a1b2"},
			ConfidenceIndicators: ConfidenceIndicators{
				High:   []string{"X-Agent malware", "Sofacy toolkit", "acrobatrelay.com"},
				Medium: []string{"Spear-phishing campaigns", "Government targets"},
				Low:    []string{"Eastern European timing", "Russian language artifacts"},
			},
		},
		{
			Name:           "Lazarus",
			Aliases:        []string{"Hidden Cobra", "Zinc", "Labyrinth Chollima"},
			Country:        "North Korea",
			Motivation:     "financial",
			Sophistication: "advanced",
			Targets:        []string{"Financial", "Cryptocurrency", "Technology", "Media"},
			TTPs:           []string{"Ransomware", "Cryptocurrency theft", "Supply chain attacks", "Destructive malware"},
			Tools:          []string{"WannaCry", "MATA", "BLINDINGCAN", "DTrack", "HOPLIGHT"},
			Categories:     []string{"ransomware", "supply-chain", "financial", "cryptocurrency"},
			DomainPatterns: []string{"update", "bitcoin", "crypto", "blockchain"},
			IPPrefixes:     []string{"103.", "185.142"},
			HashPrefixes:   []string{"fedc", "9876"},
			ConfidenceIndicators: ConfidenceIndicators{
				High:   []string{"WannaCry variants", "MATA framework", "cryptocurrency theft"},
				Medium: []string{"Financial sector targeting", "Korean timezone activity"},
				Low:    []string{"Code reuse patterns", "Infrastructure overlap"},
			},
		},
		{
			Name:           "Carbanak",
			Aliases:        []string{"Cobalt Group", "Gold Niagara"},
			Country:        "Unknown (Eastern Europe suspected)",
			Motivation:     "financial",
			Sophistication: "high",
			Targets:        []string{"Financial", "Hospitality", "Retail"},
			TTPs:           []string{"ATM malware", "POS malware", "Lateral movement", "Living off the land"},
			Tools:          []string{"Carbanak malware", "Cobalt Strike", "Mimikatz", "PowerShell Empire"},
			Categories:     []string{"ransomware", "phishing", "financial"},
			DomainPatterns: []string{"secure", "bank", "pay"},
			IPPrefixes:     []string{"162.", "85.93"},
			HashPrefixes:   []string{"d41d", "1234"},
			ConfidenceIndicators: ConfidenceIndicators{
				High:   []string{"Carbanak backdoor", "ATM targeting", "Cobalt Strike beacons"},
				Medium: []string{"Financial sector focus", "Eastern European timing"},
				Low:    []string{"Russian language comments", "Banking trojan tactics"},
			},
		},
		{
			Name:           "APT29",
			Aliases:        []string{"Cozy Bear", "The Dukes", "YTTRIUM"},
			Country:        "Russia",
			Motivation:     "espionage",
			Sophistication: "advanced",
			Targets:        []string{"Government", "Think Tanks", "Healthcare", "Energy"},
			TTPs:           []string{"Supply chain compromise", "Steganography", "WellMess malware", "Custom tooling"},
			Tools:          []string{"WellMess", "WellMail", "SoreFang", "CozyCar", "SeaDuke"},
			Categories:     []string{"phishing", "supply-chain", "zero-day"},
			DomainPatterns: []string{"health", "covid", "vaccine"},
			ConfidenceIndicators: ConfidenceIndicators{
				High:   []string{"WellMess/WellMail usage", "SeaDuke variants", "Steganography in images"},
				Medium: []string{"Think tank targeting", "COVID-19 research focus"},
				Low:    []string{"Moscow timezone activity", "Russian holidays gaps"},
			},
		},
	}
}
