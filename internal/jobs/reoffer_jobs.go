package jobs

import (
	"context"
	"errors"
	"time"

	"buyback-backend/internal/domain"
	"buyback-backend/internal/logger"
)

// AutoAcceptReoffers resolves re-offers whose auto-accept deadline has
// passed. Expiry is evaluated lazily; this sweep is what actually flips the
// status, so it should run frequently enough that the customer-facing
// countdown and the persisted state do not drift for long.
func (jr *JobRunner) AutoAcceptReoffers() {
	jr.runWithRecovery("AutoAcceptReoffers", func() {
		ctx := context.Background()
		now := time.Now().UTC()

		orders, err := jr.orderRepo.ListExpiredReoffers(ctx, now)
		if err != nil {
			logger.Error("Failed to list expired re-offers", "error", err)
			return
		}

		count := 0
		for _, o := range orders {
			if o.ReOffer == nil || !o.ReOffer.Expired(now) {
				continue
			}
			if _, err := jr.services.Reoffer.AutoAccept(ctx, o.ID, "system"); err != nil {
				// The customer may have accepted or declined between the
				// query and this write.
				if errors.Is(err, domain.ErrConflict) {
					logger.Debug("Skipping auto-accept, re-offer already resolved", "order_id", o.ID)
					continue
				}
				logger.Error("Failed to auto-accept re-offer", "order_id", o.ID, "error", err)
				continue
			}
			count++
		}
		logger.Info("Auto-accept sweep finished", "accepted", count, "candidates", len(orders))
	})
}
