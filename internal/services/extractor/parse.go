package extractor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/rentradar/internal/interfaces"
	"github.com/ternarybob/rentradar/internal/models"
)

// ParseUnits decodes a model response into unit records. Code fences and
// surrounding prose are tolerated; anything that does not contain a JSON
// array is a logical failure wrapped with ErrInvalidContent, because the
// same prompt would fail the same way on retry.
func ParseUnits(response string) ([]models.UnitRecord, error) {
	payload := stripCodeFences(response)

	start := strings.Index(payload, "[")
	end := strings.LastIndex(payload, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array in model response: %w", interfaces.ErrInvalidContent)
	}

	var units []models.UnitRecord
	if err := json.Unmarshal([]byte(payload[start:end+1]), &units); err != nil {
		return nil, fmt.Errorf("malformed JSON in model response: %v: %w", err, interfaces.ErrInvalidContent)
	}

	// Drop entries without a positive price; they are navigation artifacts or
	// "call for pricing" placeholders, not trackable units.
	valid := units[:0]
	for _, unit := range units {
		if unit.Price > 0 {
			valid = append(valid, unit)
		}
	}
	return valid, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
