package service

import (
	"context"

	"github.com/sirupsen/logrus"
)

// RunExpirePendingBatch drops pending payments older than the configured TTL. A confirmation
// arriving after the sweep is treated as orphaned.
func (s *CheckoutService) RunExpirePendingBatch(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.pendingTTL <= 0 {
		return nil
	}

	cutoff := s.now().Add(-s.pendingTTL)
	for _, item := range s.pendingRepo.ExpireBefore(cutoff) {
		s.logger.WithFields(logrus.Fields{
			"provider":            item.Provider,
			"provider_payment_id": item.Key,
			"tier":                item.TierID,
			"license_plate":       item.LicensePlate,
			"created_at":          item.CreatedAt,
		}).Info("pending_payment_expired")
	}

	return nil
}
