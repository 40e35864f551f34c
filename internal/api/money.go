package api

import (
	"strconv"
	"strings"

	"github.com/r3e-network/ledger-core/internal/ledger"
)

// parseMinorUnits converts a decimal string amount (e.g. "10.00") into
// int64 minor units (e.g. cents). Only up to two fractional digits are
// accepted; the core itself never re-rounds (SPEC_FULL.md §3/§9).
func parseMinorUnits(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ledger.ErrWrongArguments("amount must not be empty")
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if hasFrac && len(frac) > 2 {
		return 0, ledger.ErrWrongArguments("amount must have at most two decimal places")
	}
	for len(frac) < 2 {
		frac += "0"
	}

	wholePart, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ledger.ErrWrongArguments("amount must be numeric")
	}
	fracPart, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, ledger.ErrWrongArguments("amount must be numeric")
	}

	minorUnits := wholePart*100 + fracPart
	if neg {
		minorUnits = -minorUnits
	}
	return minorUnits, nil
}

// formatMinorUnits renders int64 minor units back to a two-decimal string.
func formatMinorUnits(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	whole := amount / 100
	frac := amount % 100
	s := strconv.FormatInt(whole, 10) + "." + pad2(frac)
	if neg {
		s = "-" + s
	}
	return s
}

func pad2(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) < 2 {
		return "0" + s
	}
	return s
}
