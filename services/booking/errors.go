package booking

import (
	"errors"
	"fmt"

	guideRepo "solobuddy/database/repository/guide"
	schedulerRepo "solobuddy/database/repository/scheduler"
	tourRepo "solobuddy/database/repository/tour"
	"solobuddy/utils"
)

// mapRepoError turns repository sentinels into classified errors and wraps
// anything else with op.
func mapRepoError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, schedulerRepo.ErrBookingNotFound):
		return utils.NotFound("booking not found")
	case errors.Is(err, tourRepo.ErrTourNotFound):
		return utils.NotFound("tour not found")
	case errors.Is(err, guideRepo.ErrGuideNotFound):
		return utils.NotFound("tour guide not found")
	case errors.Is(err, schedulerRepo.ErrDayTaken):
		return utils.Conflict("some booking dates are already booked")
	case errors.Is(err, schedulerRepo.ErrScheduleChanged):
		return utils.Conflict("tour guide schedule changed, please retry")
	case utils.KindOf(err) != "":
		return err
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
