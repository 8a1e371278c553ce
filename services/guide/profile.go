package guide

import (
	"context"
	"strings"

	"solobuddy/models"
	"solobuddy/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func (s *DefaultGuideService) GetDetail(ctx context.Context, guideID string) (*models.GuideDTO, error) {
	g, err := s.Repo.GetByID(ctx, guideID)
	if err != nil {
		return nil, mapRepoError("get tour guide", err)
	}
	dto := models.NewGuideDTO(*g, s.Currency)
	return &dto, nil
}

// UpdateProfile sets only the fields present in upd.
func (s *DefaultGuideService) UpdateProfile(ctx context.Context, guideID string, upd models.GuideProfileUpdate) (*models.GuideDTO, error) {
	set := bson.M{}
	var bad []string

	if upd.Bio != nil {
		set["bio"] = strings.TrimSpace(*upd.Bio)
	}
	if upd.DailyRate != nil {
		rate, err := models.FromMajor(*upd.DailyRate, s.Currency)
		if err != nil {
			bad = append(bad, "pricePerDay: "+err.Error())
		} else {
			set["dailyRate"] = rate
		}
	}
	if upd.Location != nil {
		loc := strings.ToLower(strings.TrimSpace(*upd.Location))
		if !models.Contains(models.Locations, loc) {
			bad = append(bad, "location: "+*upd.Location)
		} else {
			set["location"] = loc
		}
	}
	if upd.Languages != nil {
		langs, invalid := normalizeVocab(*upd.Languages, models.Languages, true)
		bad = append(bad, prefixed("languages", invalid)...)
		set["languages"] = langs
	}
	if upd.ExperienceYears != nil {
		if *upd.ExperienceYears < 0 {
			bad = append(bad, "experienceYears must not be negative")
		} else {
			set["experienceYears"] = *upd.ExperienceYears
		}
	}
	if upd.Photos != nil {
		set["photos"] = *upd.Photos
	}
	if upd.Vehicle != nil {
		v := strings.ToLower(strings.TrimSpace(*upd.Vehicle))
		if !models.Contains(models.VehicleTypes, v) {
			bad = append(bad, "vehicle: "+*upd.Vehicle)
		} else {
			set["vehicle"] = v
		}
	}
	if upd.Specialties != nil {
		specs, invalid := normalizeVocab(*upd.Specialties, models.SpecialtyTypes, true)
		bad = append(bad, prefixed("specialties", invalid)...)
		set["specialties"] = specs
	}
	if upd.Favourites != nil {
		favs, invalid := normalizeVocab(*upd.Favourites, models.Favourites, false)
		bad = append(bad, prefixed("favourites", invalid)...)
		set["favourites"] = favs
	}

	if len(bad) > 0 {
		return nil, utils.Validation("invalid profile fields", bad...)
	}
	if len(set) == 0 {
		return nil, utils.Validation("no profile fields to update")
	}

	g, err := s.Repo.UpdateFields(ctx, guideID, set)
	if err != nil {
		return nil, mapRepoError("update tour guide", err)
	}
	s.Logger.Info("Guide profile updated", zap.String("guideId", guideID), zap.Int("fields", len(set)))
	dto := models.NewGuideDTO(*g, s.Currency)
	return &dto, nil
}

// normalizeVocab trims, optionally lowercases and de-duplicates values,
// returning the ones outside allowed separately.
func normalizeVocab(values, allowed []string, lower bool) ([]string, []string) {
	out := make([]string, 0, len(values))
	var invalid []string
	seen := map[string]bool{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if lower {
			v = strings.ToLower(v)
		}
		if !models.Contains(allowed, v) {
			invalid = append(invalid, v)
			continue
		}
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out, invalid
}

func prefixed(field string, values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = field + ": " + v
	}
	return out
}
