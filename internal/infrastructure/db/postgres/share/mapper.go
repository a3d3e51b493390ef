package share

import (
	"encoding/json"

	domain "json-share-api/internal/domain/share"
)

func fromDBModel(model *Share) *domain.Share {
	var s = &domain.Share{
		ID:      domain.ID(model.ID),
		ShareID: model.ShareID,
		Content: json.RawMessage(model.Content),
		OwnerID: model.OwnerID,

		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		ExpiresAt: model.ExpiresAt,
	}

	return s
}

func fromDBSummaries(models Summaries) domain.Summaries {
	out := make(domain.Summaries, len(models))
	for idx, m := range models {
		out[idx] = &domain.Summary{
			ID:        domain.ID(m.ID),
			ShareID:   m.ShareID,
			ExpiresAt: m.ExpiresAt,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		}
	}

	return out
}
