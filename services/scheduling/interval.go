package scheduling

import (
	"time"

	"fitstudio/config"
)

// SliceMinutes is the minimum scheduling granule. Every interval is
// tested for overlap as a set of these fixed-size slices.
const SliceMinutes = 5

// Interval is a half-open [Start, End) window of one calendar day,
// expressed as minutes from midnight.
type Interval struct {
	Date  int // YYYYMMDD
	Start int
	End   int
}

// NewInterval validates the window. An interval must span more than one
// slice, so zero-length and sub-granule windows are rejected up front,
// before any store access.
func NewInterval(date, start, end int) (Interval, error) {
	if end-start <= SliceMinutes {
		return Interval{}, ErrInvalidInterval
	}
	if start < 0 || end > 24*60 {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Date: date, Start: start, End: end}, nil
}

// Slices returns the indexes of the 5-minute granules the interval
// occupies. A partial trailing granule still counts as occupied.
func (iv Interval) Slices() map[int]struct{} {
	slices := make(map[int]struct{})
	for s := iv.Start / SliceMinutes; s*SliceMinutes < iv.End; s++ {
		slices[s] = struct{}{}
	}
	return slices
}

// Overlaps reports whether the two intervals share any slice on the
// same day.
func (iv Interval) Overlaps(other Interval) bool {
	if iv.Date != other.Date {
		return false
	}
	theirs := other.Slices()
	for s := range iv.Slices() {
		if _, ok := theirs[s]; ok {
			return true
		}
	}
	return false
}

// studioLocation resolves the configured studio timezone, falling back
// to local time when the zone name cannot be loaded.
func studioLocation() *time.Location {
	loc, err := time.LoadLocation(config.AppConfig.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// StartTime anchors the interval's start to wall-clock time.
func (iv Interval) StartTime() time.Time {
	return minuteOfDay(iv.Date, iv.Start)
}

// EndTime anchors the interval's end to wall-clock time.
func (iv Interval) EndTime() time.Time {
	return minuteOfDay(iv.Date, iv.End)
}

func minuteOfDay(date, minutes int) time.Time {
	year := date / 10000
	month := time.Month(date / 100 % 100)
	day := date % 100
	return time.Date(year, month, day, 0, minutes, 0, 0, studioLocation())
}
