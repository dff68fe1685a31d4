package catalog

import (
	"time"

	"github.com/vibast-solutions/ms-go-parking-payments/app/entity"
)

const Currency = "CAD"

type Catalog struct {
	tiers []entity.Tier
	byID  map[string]entity.Tier
}

func New(tiers ...entity.Tier) *Catalog {
	c := &Catalog{
		tiers: make([]entity.Tier, 0, len(tiers)),
		byID:  make(map[string]entity.Tier, len(tiers)),
	}
	for _, tier := range tiers {
		if _, exists := c.byID[tier.ID]; exists {
			continue
		}
		c.tiers = append(c.tiers, tier)
		c.byID[tier.ID] = tier
	}
	return c
}

// Default returns the parking pass tiers sold in British Columbia.
func Default() *Catalog {
	return New(
		entity.Tier{ID: "1hr", Name: "1 Hour", PriceCents: 850, Currency: Currency, Description: "Access for 1 hour", Duration: time.Hour},
		entity.Tier{ID: "1day", Name: "1 Day", PriceCents: 3650, Currency: Currency, Description: "Access for 1 day", Duration: 24 * time.Hour},
		entity.Tier{ID: "1week", Name: "1 Week", PriceCents: 11850, Currency: Currency, Description: "Access for 1 week", Duration: 7 * 24 * time.Hour},
		entity.Tier{ID: "1month", Name: "1 Month", PriceCents: 17500, Currency: Currency, Description: "Access for 1 month", Duration: 30 * 24 * time.Hour},
	)
}

func (c *Catalog) Find(id string) (entity.Tier, bool) {
	tier, ok := c.byID[id]
	return tier, ok
}

func (c *Catalog) List() []entity.Tier {
	out := make([]entity.Tier, len(c.tiers))
	copy(out, c.tiers)
	return out
}
