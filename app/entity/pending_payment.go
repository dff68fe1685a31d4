package entity

import "time"

// PendingPayment links a provider-issued order or intent id to the purchase it pays for.
// Records are replaced, never mutated, once stored.
type PendingPayment struct {
	Key         string
	Provider    string
	ReferenceID string

	TierID       string
	Tier         Tier
	LicensePlate string

	CardholderName  *string
	CardholderEmail *string

	CreatedAt time.Time
}
