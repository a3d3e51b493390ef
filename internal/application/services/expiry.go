package services

import "time"

// ExpiryFrom adds days calendar days to t. Day-of-month overflow rolls the
// month and year over, so Jan 31 + 1 is Feb 1 and Feb 28 2024 + 1 is Feb 29.
func ExpiryFrom(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}
