package guide

import (
	"context"

	"solobuddy/models"
)

// Search pages guides matching filter, best rated first.
func (s *DefaultGuideService) Search(ctx context.Context, filter models.GuideFilter, page, limit int) (models.Page[models.GuideDTO], error) {
	query, err := BuildGuideQuery(filter, s.Currency)
	if err != nil {
		return models.Page[models.GuideDTO]{}, err
	}
	found, err := s.Repo.Search(ctx, query, page, limit)
	if err != nil {
		return models.Page[models.GuideDTO]{}, mapRepoError("search tour guides", err)
	}
	out := models.Page[models.GuideDTO]{
		Results:      make([]models.GuideDTO, 0, len(found.Results)),
		Page:         found.Page,
		Limit:        found.Limit,
		TotalPages:   found.TotalPages,
		TotalResults: found.TotalResults,
	}
	for _, g := range found.Results {
		out.Results = append(out.Results, models.NewGuideDTO(g, s.Currency))
	}
	return out, nil
}
