package share

import (
	"json-share-api/internal/domain/share"
)

func ToResponseCreated(r share.Receipt) Created {
	return Created{
		ShareID:   r.ShareID,
		ExpiresAt: r.ExpiresAt,
		CreatedAt: r.CreatedAt,
		ShareURL:  r.ShareURL,
	}
}

func ToResponseView(v share.View) View {
	return View{
		Content:   v.Content,
		CreatedAt: v.CreatedAt,
		ExpiresAt: v.ExpiresAt,
	}
}

func ToResponseSummaries(sDomain share.Summaries) Summaries {
	out := make(Summaries, len(sDomain))
	for idx, s := range sDomain {
		out[idx] = Summary{
			ID:        uint64(s.ID),
			ShareID:   s.ShareID,
			ExpiresAt: s.ExpiresAt,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		}
	}

	return out
}
