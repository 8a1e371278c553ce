package tour

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tourRepo "solobuddy/database/repository/tour"
	"solobuddy/models"
	"solobuddy/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func (s *DefaultTourService) Create(ctx context.Context, guideID string, in models.TourInput) (*models.TourDTO, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, utils.Validation("title is required")
	}
	if in.Price == nil {
		return nil, utils.Validation("price is required")
	}
	set, err := s.fields(in)
	if err != nil {
		return nil, err
	}

	t := &models.Tour{
		ID:        uuid.NewString(),
		GuideID:   guideID,
		Title:     set["title"].(string),
		Price:     set["price"].(models.Money),
		CreatedAt: s.Now().UTC(),
	}
	if v, ok := set["description"].(string); ok {
		t.Description = v
	}
	if v, ok := set["unit"].(string); ok {
		t.Unit = v
	}
	if v, ok := set["duration"].(string); ok {
		t.Duration = v
	}

	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create tour: %w", err)
	}
	s.Logger.Info("Tour created", zap.String("tourId", t.ID), zap.String("guideId", guideID))
	dto := models.NewTourDTO(*t, s.Currency)
	return &dto, nil
}

func (s *DefaultTourService) Get(ctx context.Context, tourID string) (*models.TourDTO, error) {
	t, err := s.Repo.GetByID(ctx, tourID)
	if err != nil {
		return nil, mapRepoError("get tour", err)
	}
	dto := models.NewTourDTO(*t, s.Currency)
	return &dto, nil
}

func (s *DefaultTourService) ListByGuide(ctx context.Context, guideID string, page, limit int) (models.Page[models.TourDTO], error) {
	found, err := s.Repo.ListByGuide(ctx, guideID, page, limit)
	if err != nil {
		return models.Page[models.TourDTO]{}, fmt.Errorf("list tours: %w", err)
	}
	out := models.Page[models.TourDTO]{
		Results:      make([]models.TourDTO, 0, len(found.Results)),
		Page:         found.Page,
		Limit:        found.Limit,
		TotalPages:   found.TotalPages,
		TotalResults: found.TotalResults,
	}
	for _, t := range found.Results {
		out.Results = append(out.Results, models.NewTourDTO(t, s.Currency))
	}
	return out, nil
}

// Update changes the given fields of a live tour. Bookings keep the tour
// snapshot taken when they were made.
func (s *DefaultTourService) Update(ctx context.Context, tourID, guideID string, in models.TourInput) (*models.TourDTO, error) {
	set, err := s.fields(in)
	if err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return nil, utils.Validation("no tour fields to update")
	}
	if err := s.checkOwner(ctx, tourID, guideID); err != nil {
		return nil, err
	}
	t, err := s.Repo.UpdateFields(ctx, tourID, guideID, set)
	if err != nil {
		return nil, mapRepoError("update tour", err)
	}
	s.Logger.Info("Tour updated", zap.String("tourId", tourID), zap.Int("fields", len(set)))
	dto := models.NewTourDTO(*t, s.Currency)
	return &dto, nil
}

func (s *DefaultTourService) Delete(ctx context.Context, tourID, guideID string) error {
	if err := s.checkOwner(ctx, tourID, guideID); err != nil {
		return err
	}
	if err := s.Repo.SoftDelete(ctx, tourID, guideID); err != nil {
		return mapRepoError("delete tour", err)
	}
	s.Logger.Info("Tour deleted", zap.String("tourId", tourID), zap.String("guideId", guideID))
	return nil
}

// checkOwner separates "missing" from "someone else's" before a write.
func (s *DefaultTourService) checkOwner(ctx context.Context, tourID, guideID string) error {
	t, err := s.Repo.GetByID(ctx, tourID)
	if err != nil {
		return mapRepoError("get tour", err)
	}
	if t.GuideID != guideID {
		return utils.Forbidden("you do not own this tour")
	}
	return nil
}

// fields validates in and returns the set to persist.
func (s *DefaultTourService) fields(in models.TourInput) (bson.M, error) {
	set := bson.M{}
	var bad []string

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			bad = append(bad, "title must not be empty")
		}
		set["title"] = title
	}
	if in.Description != nil {
		set["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		price, err := models.FromMajor(*in.Price, s.Currency)
		if err != nil {
			bad = append(bad, "price: "+err.Error())
		}
		set["price"] = price
	}
	if in.Unit != nil {
		unit := strings.ToLower(strings.TrimSpace(*in.Unit))
		if !models.Contains(models.TourUnits, unit) {
			bad = append(bad, "unit: "+*in.Unit)
		}
		set["unit"] = unit
	}
	if in.Duration != nil {
		set["duration"] = strings.TrimSpace(*in.Duration)
	}

	if len(bad) > 0 {
		return nil, utils.Validation("invalid tour fields", bad...)
	}
	return set, nil
}

func mapRepoError(op string, err error) error {
	if errors.Is(err, tourRepo.ErrTourNotFound) {
		return utils.NotFound("tour not found")
	}
	return fmt.Errorf("%s: %w", op, err)
}
