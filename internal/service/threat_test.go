package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secureops-systems/secureops/internal/attribution"
)

func TestListActors(t *testing.T) {
	svc := NewThreatService(attribution.NewEngine(attribution.DefaultProfiles()))

	tests := []struct {
		name    string
		country string
		search  string
		want    []string
	}{
		{"no filters", "", "", []string{"APT28", "Lazarus", "Carbanak", "APT29"}},
		{"country filter", "Russia", "", []string{"APT28", "APT29"}},
		{"country is case-insensitive", "russia", "", []string{"APT28", "APT29"}},
		{"alias search", "", "cozy", []string{"APT29"}},
		{"name search", "", "lazarus", []string{"Lazarus"}},
		{"combined", "Russia", "bear", []string{"APT28", "APT29"}},
		{"no match", "Brazil", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.ListActors(tt.country, tt.search)
			names := make([]string, len(got))
			for i, p := range got {
				names[i] = p.Name
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestGetActor(t *testing.T) {
	svc := NewThreatService(attribution.NewEngine(attribution.DefaultProfiles()))

	p := svc.GetActor("Fancy Bear")
	require.NotNil(t, p)
	assert.Equal(t, "APT28", p.Name)

	assert.Nil(t, svc.GetActor("unknown actor"))
}
