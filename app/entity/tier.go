package entity

import (
	"strconv"
	"time"
)

type Tier struct {
	ID          string
	Name        string
	PriceCents  int64
	Currency    string
	Description string
	Duration    time.Duration
}

// Price renders the tier price as a decimal string, e.g. "8.50".
func (t Tier) Price() string {
	return FormatAmount(t.PriceCents)
}

func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	fraction := strconv.FormatInt(cents%100, 10)
	if len(fraction) == 1 {
		fraction = "0" + fraction
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + fraction
}
