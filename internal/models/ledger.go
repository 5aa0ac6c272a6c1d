package models

import "time"

// LedgerDateFormat is the key format for daily cost ledger entries.
const LedgerDateFormat = "2006-01-02"

// CostLedgerEntry is an append/increment-only daily aggregate of extraction
// spend. One entry exists per date; it is incremented atomically and read by
// the cost governor before admitting new work.
type CostLedgerEntry struct {
	Date              string `badgerhold:"key"` // YYYY-MM-DD
	PropertiesScraped int
	ExtractionCalls   int
	TotalCostUSD      float64
	UpdatedAt         time.Time
}

// LedgerDate formats a time as a ledger date key in UTC.
func LedgerDate(t time.Time) string {
	return t.UTC().Format(LedgerDateFormat)
}
