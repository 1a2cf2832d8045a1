package transit

import (
	"fmt"
	"time"
)

// AgencyTimezone is the local timezone of the transit agency. All bucket
// derivation happens in this zone, never UTC, so that observations either
// side of local midnight land in the correct day-of-week bucket.
const AgencyTimezone = "America/New_York"

var agencyLocation *time.Location

func GetAgencyLocation() *time.Location {
	if agencyLocation == nil {
		location, err := time.LoadLocation(AgencyTimezone)
		if err != nil {
			panic(err)
		}
		agencyLocation = location
	}

	return agencyLocation
}

type DayOfWeek string

const (
	DayOfWeekMonday    DayOfWeek = "MON"
	DayOfWeekTuesday             = "TUE"
	DayOfWeekWednesday           = "WED"
	DayOfWeekThursday            = "THU"
	DayOfWeekFriday              = "FRI"
	DayOfWeekSaturday            = "SAT"
	DayOfWeekSunday              = "SUN"
)

var dayOfWeekLookup = map[time.Weekday]DayOfWeek{
	time.Monday:    DayOfWeekMonday,
	time.Tuesday:   DayOfWeekTuesday,
	time.Wednesday: DayOfWeekWednesday,
	time.Thursday:  DayOfWeekThursday,
	time.Friday:    DayOfWeekFriday,
	time.Saturday:  DayOfWeekSaturday,
	time.Sunday:    DayOfWeekSunday,
}

func ParseDayOfWeek(token string) (DayOfWeek, error) {
	switch DayOfWeek(token) {
	case DayOfWeekMonday, DayOfWeekTuesday, DayOfWeekWednesday, DayOfWeekThursday,
		DayOfWeekFriday, DayOfWeekSaturday, DayOfWeekSunday:
		return DayOfWeek(token), nil
	}

	return "", fmt.Errorf("unrecognised day of week token %q", token)
}

// BucketKey identifies the granularity every delay statistic is tracked at.
// Immutable once constructed.
type BucketKey struct {
	RouteID   string    `groups:"basic"`
	StopID    string    `groups:"basic"`
	HourOfDay int       `groups:"basic"`
	DayOfWeek DayOfWeek `groups:"basic"`
}

func NewBucketKey(routeID string, stopID string, hourOfDay int, dayOfWeek string) (BucketKey, error) {
	if hourOfDay < 0 || hourOfDay > 23 {
		return BucketKey{}, fmt.Errorf("hour of day %d outside [0,23]", hourOfDay)
	}

	day, err := ParseDayOfWeek(dayOfWeek)
	if err != nil {
		return BucketKey{}, err
	}

	return BucketKey{
		RouteID:   routeID,
		StopID:    stopID,
		HourOfDay: hourOfDay,
		DayOfWeek: day,
	}, nil
}

// BucketKeyFor derives the bucket an observation at the given instant belongs
// to, in the agency timezone.
func BucketKeyFor(routeID string, stopID string, at time.Time) BucketKey {
	localTime := at.In(GetAgencyLocation())

	return BucketKey{
		RouteID:   routeID,
		StopID:    stopID,
		HourOfDay: localTime.Hour(),
		DayOfWeek: dayOfWeekLookup[localTime.Weekday()],
	}
}

func (k BucketKey) String() string {
	return fmt.Sprintf("%s:%s:%d:%s", k.RouteID, k.StopID, k.HourOfDay, k.DayOfWeek)
}
