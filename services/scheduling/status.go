package scheduling

import (
	"time"

	"fitstudio/models"
)

// EffectiveStatus derives the read-time status of a seat. A
// confirm-required seat whose slot end has passed reads as
// confirm-expired; nothing is written back, and no background sweep
// exists. All other seats read as stored.
func EffectiveStatus(seat *models.Seat, now time.Time) models.SeatStatus {
	if seat.Status == models.SeatStatusConfirmRequired {
		iv := Interval{Date: seat.Date, Start: seat.Start, End: seat.End}
		if !now.Before(iv.EndTime()) {
			return models.SeatStatusConfirmExpired
		}
	}
	return seat.Status
}
