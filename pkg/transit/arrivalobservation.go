package transit

import "time"

type ScheduleRelationship string

const (
	ScheduleRelationshipScheduled ScheduleRelationship = "SCHEDULED"
	ScheduleRelationshipSkipped                        = "SKIPPED"
	ScheduleRelationshipNoData                         = "NO_DATA"
)

// ArrivalObservation is one normalised realtime signal. Immutable once
// created; consumed exactly once by the estimator and the aggregator.
type ArrivalObservation struct {
	RouteID string `groups:"basic"`
	StopID  string `groups:"basic"`
	TripID  string `groups:"basic"`

	DirectionID int `groups:"basic"`

	ObservedAt   time.Time `groups:"basic"`
	DelaySeconds int       `groups:"basic"` // positive=late, negative=early

	VehicleID string `groups:"detailed"`

	ScheduleRelationship ScheduleRelationship `groups:"detailed"`

	DataSource *DataSource `groups:"internal"`
}

func (o *ArrivalObservation) BucketKey() BucketKey {
	return BucketKeyFor(o.RouteID, o.StopID, o.ObservedAt)
}
