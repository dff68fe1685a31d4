package entity

import "time"

type Activation struct {
	ID uint64

	Provider          string
	ProviderPaymentID string
	ReferenceID       string

	LicensePlate string
	TierID       string
	TierName     string

	AmountCents int64
	Currency    string

	CardholderName  *string
	CardholderEmail *string

	ActivatedAt time.Time
	ExpiresAt   time.Time
}

func (a *Activation) Amount() string {
	return FormatAmount(a.AmountCents)
}
