package repository

import (
	"context"
	"errors"

	"github.com/vibast-solutions/ms-go-parking-payments/app/entity"
)

var ErrActivationAlreadyExists = errors.New("activation already exists")

type ActivationRepository struct {
	db DBTX
}

func NewActivationRepository(db DBTX) *ActivationRepository {
	return &ActivationRepository{db: db}
}

func (r *ActivationRepository) Create(ctx context.Context, activation *entity.Activation) error {
	query := `
		INSERT INTO activations (
			provider, provider_payment_id, reference_id,
			license_plate, tier_id, tier_name,
			amount_cents, currency,
			cardholder_name, cardholder_email,
			activated_at, expires_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		activation.Provider,
		activation.ProviderPaymentID,
		activation.ReferenceID,
		activation.LicensePlate,
		activation.TierID,
		activation.TierName,
		activation.AmountCents,
		activation.Currency,
		nullableStringValue(activation.CardholderName),
		nullableStringValue(activation.CardholderEmail),
		activation.ActivatedAt,
		activation.ExpiresAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrActivationAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	activation.ID = uint64(id)

	return nil
}
