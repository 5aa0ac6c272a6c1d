package pricing

import (
	"regexp"
	"strconv"
)

// ConcessionType identifies the kind of promotional offer detected in
// listing free text.
type ConcessionType string

const (
	ConcessionMonthsFree    ConcessionType = "months_free"
	ConcessionPercentOff    ConcessionType = "percent_off"
	ConcessionWaivedFee     ConcessionType = "waived_fee"
	ConcessionZeroDeposit   ConcessionType = "zero_deposit"
	ConcessionMoveInSpecial ConcessionType = "move_in_special"
)

// Concession is one detected promotional offer.
type Concession struct {
	Type    ConcessionType
	Months  float64 // Free months, for months_free offers
	Percent float64 // Discount percentage, for percent_off offers
	Matched string  // The phrase that triggered detection
}

var (
	monthsFreeRe  = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*months?\s*(?:of\s+)?(?:rent\s+)?free\b`)
	firstMonthRe  = regexp.MustCompile(`(?i)\b(?:first|one)\s+month\s+(?:rent\s+)?free\b|\bfree\s+(?:first\s+)?month\b`)
	percentOffRe  = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*%\s*off\b`)
	waivedFeeRe   = regexp.MustCompile(`(?i)\bwaived?\s+(?:\w+\s+)?fees?\b|\b(?:\w+\s+)?fees?\s+waived\b`)
	zeroDepositRe = regexp.MustCompile(`(?i)\$0\s*(?:security\s+)?deposit\b|\b(?:no|zero)\s+(?:security\s+)?deposit\b`)
	moveInRe      = regexp.MustCompile(`(?i)\bmove[-\s]?in\s+special\b`)
	leaseTermRe   = regexp.MustCompile(`(?i)\b(\d+)[-\s]*month\s+lease\b`)
)

// DetectConcessions scans free text for promotional offers. Multiple
// independent concessions may be detected; zero matches is a normal result.
func DetectConcessions(text string) []Concession {
	if text == "" {
		return nil
	}

	var concessions []Concession

	if m := monthsFreeRe.FindStringSubmatch(text); m != nil {
		months, err := strconv.ParseFloat(m[1], 64)
		if err == nil && months > 0 {
			concessions = append(concessions, Concession{
				Type:    ConcessionMonthsFree,
				Months:  months,
				Matched: m[0],
			})
		}
	} else if m := firstMonthRe.FindString(text); m != "" {
		concessions = append(concessions, Concession{
			Type:    ConcessionMonthsFree,
			Months:  1,
			Matched: m,
		})
	}

	if m := percentOffRe.FindStringSubmatch(text); m != nil {
		pct, err := strconv.ParseFloat(m[1], 64)
		if err == nil && pct > 0 && pct < 100 {
			concessions = append(concessions, Concession{
				Type:    ConcessionPercentOff,
				Percent: pct,
				Matched: m[0],
			})
		}
	}

	if m := waivedFeeRe.FindString(text); m != "" {
		concessions = append(concessions, Concession{Type: ConcessionWaivedFee, Matched: m})
	}
	if m := zeroDepositRe.FindString(text); m != "" {
		concessions = append(concessions, Concession{Type: ConcessionZeroDeposit, Matched: m})
	}
	if m := moveInRe.FindString(text); m != "" {
		concessions = append(concessions, Concession{Type: ConcessionMoveInSpecial, Matched: m})
	}

	return concessions
}

// DetectLeaseTerm extracts a lease term in months from free text; 0 when no
// term is mentioned.
func DetectLeaseTerm(text string) int {
	if m := leaseTermRe.FindStringSubmatch(text); m != nil {
		if months, err := strconv.Atoi(m[1]); err == nil && months > 0 {
			return months
		}
	}
	return 0
}
