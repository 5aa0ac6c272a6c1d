package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/rentradar/internal/interfaces"
)

func TestParseUnits(t *testing.T) {
	response := `[
		{"title": "Unit 204", "price": 2000, "bedrooms": 2, "bathrooms": 1, "sqft": 950, "available": true, "concession_text": "1 month free"},
		{"title": "Unit 310", "price": 2400, "bedrooms": 3, "bathrooms": 2, "sqft": 1200, "available": false}
	]`

	units, err := ParseUnits(response)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "Unit 204", units[0].Title)
	assert.Equal(t, 2000.0, units[0].Price)
	assert.Equal(t, "1 month free", units[0].ConcessionText)
	assert.False(t, units[1].Available)
}

func TestParseUnitsCodeFences(t *testing.T) {
	response := "```json\n[{\"title\": \"Unit 1\", \"price\": 1500}]\n```"

	units, err := ParseUnits(response)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, 1500.0, units[0].Price)
}

func TestParseUnitsSurroundingProse(t *testing.T) {
	response := `Here are the units I found:
[{"title": "Unit 1", "price": 1500}]
Let me know if you need more detail.`

	units, err := ParseUnits(response)
	require.NoError(t, err)
	require.Len(t, units, 1)
}

func TestParseUnitsEmptyArray(t *testing.T) {
	units, err := ParseUnits("[]")
	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestParseUnitsDropsZeroPriceEntries(t *testing.T) {
	response := `[
		{"title": "Call for pricing", "price": 0},
		{"title": "Unit 2", "price": 1800}
	]`

	units, err := ParseUnits(response)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "Unit 2", units[0].Title)
}

func TestParseUnitsInvalidContent(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"prose only", "I could not find any rental units on this page."},
		{"malformed json", `[{"title": "Unit 1", "price": }]`},
		{"empty response", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUnits(tt.response)
			assert.ErrorIs(t, err, interfaces.ErrInvalidContent)
		})
	}
}

func TestCleanContentStripsChrome(t *testing.T) {
	html := `<html><head><script>var x = 1;</script><style>.a{}</style></head>
	<body>
	<nav>Home | About</nav>
	<h1>Bayview Apartments</h1>
	<p>Unit 204: $2,000/mo, 2 bed 1 bath. 1 month free!</p>
	<footer>Copyright 2026</footer>
	</body></html>`

	content, err := CleanContent(html, "https://example.com/listing", 10000)
	require.NoError(t, err)
	assert.Contains(t, content, "Bayview Apartments")
	assert.Contains(t, content, "1 month free")
	assert.NotContains(t, content, "var x = 1")
	assert.NotContains(t, content, "Home | About")
	assert.NotContains(t, content, "Copyright 2026")
}

func TestCleanContentTruncates(t *testing.T) {
	html := "<html><body><p>" + strings.Repeat("listing detail ", 1000) + "</p></body></html>"

	content, err := CleanContent(html, "https://example.com/listing", 500)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(content), 500)
}
