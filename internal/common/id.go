package common

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewJobID generates a unique scrape job ID with the "job_" prefix
func NewJobID() string {
	return "job_" + uuid.New().String()
}

// NewHistoryID generates a unique price history entry ID with the "hist_" prefix
func NewHistoryID() string {
	return "hist_" + uuid.New().String()
}

// ListingID composes the stable listing identifier from a property and unit identifier.
// Format: <property>:<unit>
func ListingID(propertyID, unitID string) string {
	return fmt.Sprintf("%s:%s", normalizeIDPart(propertyID), normalizeIDPart(unitID))
}

func normalizeIDPart(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	return strings.ReplaceAll(s, ":", "_")
}
