package repository

import (
	guideRepo "solobuddy/database/repository/guide"
	reviewRepo "solobuddy/database/repository/review"
	schedulerRepo "solobuddy/database/repository/scheduler"
	tourRepo "solobuddy/database/repository/tour"
)

// Re-export the GuideRepository interface and constructor.
type GuideRepository = guideRepo.GuideRepository

var NewMongoGuideRepo = guideRepo.NewMongoGuideRepo

// Re-export the TourRepository interface and constructor.
type TourRepository = tourRepo.TourRepository

var NewMongoTourRepo = tourRepo.NewMongoTourRepo

// Re-export the ReviewRepository interface and constructor.
type ReviewRepository = reviewRepo.ReviewRepository

var NewMongoReviewRepo = reviewRepo.NewMongoReviewRepo

// Re-export the SchedulerRepository interface and constructor.
type SchedulerRepository = schedulerRepo.SchedulerRepository

var NewMongoSchedulerRepo = schedulerRepo.NewMongoSchedulerRepo

// Indexer is implemented by every Mongo repository.
type Indexer interface {
	EnsureIndexes() error
}

// EnsureAllIndexes creates the indexes of every given repository, stopping at the first failure.
func EnsureAllIndexes(repos ...Indexer) error {
	for _, r := range repos {
		if err := r.EnsureIndexes(); err != nil {
			return err
		}
	}
	return nil
}
