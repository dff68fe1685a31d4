package mapper

import (
	"github.com/vibast-solutions/ms-go-parking-payments/app/entity"
	"github.com/vibast-solutions/ms-go-parking-payments/app/types"
)

func TierToResponse(item entity.Tier) *types.TierResponse {
	return &types.TierResponse{
		ID:          item.ID,
		Name:        item.Name,
		Price:       item.Price(),
		Currency:    item.Currency,
		Description: item.Description,
	}
}

func TiersToResponse(items []entity.Tier) []*types.TierResponse {
	out := make([]*types.TierResponse, 0, len(items))
	for _, item := range items {
		out = append(out, TierToResponse(item))
	}
	return out
}
