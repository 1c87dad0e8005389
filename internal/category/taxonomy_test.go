package category

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipts-inbox/constants"
)

func TestTaxonomy_Match(t *testing.T) {
	tax := Default()
	tests := []struct {
		name  string
		texts []string
		want  constants.Category
		ok    bool
	}{
		{"grocery vendor", []string{"Whole Foods Market"}, constants.Groceries, true},
		{"delivery before rideshare", []string{"Uber Eats"}, constants.Dining, true},
		{"rideshare", []string{"Your trip with Uber"}, constants.Transportation, true},
		{"word boundary", []string{"Amazonian rainforest tour"}, constants.Other, false},
		{"punctuated keyword", []string{"AT&T Wireless bill"}, constants.Utilities, true},
		{"vendor before body", []string{"Best Buy", "", "Questions? Call us toll-free at 1-888-237-8289"}, constants.Shopping, true},
		{"toll-free is not a toll", []string{"Acme Widgets", "Call us toll-free"}, constants.Other, false},
		{"toll road", []string{"E-ZPass", "Toll road charge"}, constants.Transportation, true},
		{"falls through to later text", []string{"Zyx Corp", "Your Lyft ride"}, constants.Transportation, true},
		{"empty", []string{"", "  "}, constants.Other, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tax.Match(tt.texts...)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTaxonomy_MapLabel(t *testing.T) {
	tax := Default()

	got, ok := tax.MapLabel("food and drink")
	assert.True(t, ok)
	assert.Equal(t, constants.Dining, got)

	got, ok = tax.MapLabel("Pharmacy purchase")
	assert.True(t, ok)
	assert.Equal(t, constants.Healthcare, got)

	_, ok = tax.MapLabel("zzz")
	assert.False(t, ok)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	body := `
- category: Entertainment
  keywords: [whole foods]
- category: Groceries
  keywords: [bodega]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	tax, err := LoadFile(path)
	require.NoError(t, err)

	got, ok := tax.Match("Whole Foods")
	assert.True(t, ok)
	assert.Equal(t, constants.Entertainment, got)

	got, _ = tax.Match("corner bodega")
	assert.Equal(t, constants.Groceries, got)
}

func TestNew_RejectsUnknownCategory(t *testing.T) {
	_, err := New([]Rule{{Category: "Pets", Keywords: []string{"petco"}}})
	assert.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
