package normalizer

import (
	"time"

	gtfsrtproto "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/commuteguardian/commuteguardian/pkg/transit"
	"github.com/rs/zerolog/log"
)

// The normalizer converts raw feed messages from any upstream source into
// zero or one ArrivalObservation. A nil return means the message was
// skipped, which is never an error - one bad record must not block the
// stream.

// FromStopTimeUpdate normalises a single GTFS-RT stop time update belonging
// to the given trip.
func FromStopTimeUpdate(trip *gtfsrtproto.TripDescriptor, vehicleID string, stopTimeUpdate *gtfsrtproto.TripUpdate_StopTimeUpdate, feedTimestamp time.Time, datasource *transit.DataSource) *transit.ArrivalObservation {
	routeID := trip.GetRouteId()
	stopID := stopTimeUpdate.GetStopId()

	if routeID == "" || stopID == "" {
		log.Warn().Str("trip", trip.GetTripId()).Msg("Skipping stop time update without route/stop")
		return nil
	}

	scheduleRelationship := transit.ScheduleRelationshipScheduled
	switch stopTimeUpdate.GetScheduleRelationship() {
	case gtfsrtproto.TripUpdate_StopTimeUpdate_SKIPPED:
		scheduleRelationship = transit.ScheduleRelationshipSkipped
	case gtfsrtproto.TripUpdate_StopTimeUpdate_NO_DATA:
		scheduleRelationship = transit.ScheduleRelationshipNoData
	}

	arrival := stopTimeUpdate.GetArrival()
	if arrival == nil {
		arrival = stopTimeUpdate.GetDeparture()
	}

	if arrival == nil || arrival.Delay == nil {
		if scheduleRelationship == transit.ScheduleRelationshipScheduled {
			log.Warn().
				Str("trip", trip.GetTripId()).
				Str("stop", stopID).
				Msg("Skipping stop time update without inferable delay")
		}
		return nil
	}

	observedAt := feedTimestamp
	if arrival.Time != nil {
		observedAt = time.Unix(arrival.GetTime(), 0)
	}

	return &transit.ArrivalObservation{
		RouteID: routeID,
		StopID:  stopID,
		TripID:  trip.GetTripId(),

		DirectionID: int(trip.GetDirectionId()),

		ObservedAt:   observedAt,
		DelaySeconds: int(arrival.GetDelay()),

		VehicleID: vehicleID,

		ScheduleRelationship: scheduleRelationship,

		DataSource: datasource,
	}
}

// PredictionDocument is one flattened prediction from the MBTA v3 JSON API,
// joined against its included schedule entry by the poller.
type PredictionDocument struct {
	RouteID     string
	StopID      string
	TripID      string
	DirectionID int
	VehicleID   string

	ArrivalTime   *time.Time
	ScheduledTime *time.Time

	ScheduleRelationship string

	RetrievedAt time.Time
}

// FromPrediction normalises an MBTA v3 prediction. Delay is the difference
// between the predicted and scheduled arrival, so predictions without both
// are skipped.
func FromPrediction(prediction *PredictionDocument, datasource *transit.DataSource) *transit.ArrivalObservation {
	if prediction.RouteID == "" || prediction.StopID == "" {
		log.Warn().Str("trip", prediction.TripID).Msg("Skipping prediction without route/stop")
		return nil
	}

	scheduleRelationship := transit.ScheduleRelationshipScheduled
	switch prediction.ScheduleRelationship {
	case "SKIPPED", "CANCELLED":
		scheduleRelationship = transit.ScheduleRelationshipSkipped
	case "NO_DATA":
		scheduleRelationship = transit.ScheduleRelationshipNoData
	}

	if prediction.ArrivalTime == nil || prediction.ScheduledTime == nil {
		if scheduleRelationship == transit.ScheduleRelationshipScheduled {
			log.Warn().
				Str("trip", prediction.TripID).
				Str("stop", prediction.StopID).
				Msg("Skipping prediction without inferable delay")
		}
		return nil
	}

	observedAt := prediction.RetrievedAt
	if observedAt.IsZero() {
		observedAt = *prediction.ArrivalTime
	}

	return &transit.ArrivalObservation{
		RouteID: prediction.RouteID,
		StopID:  prediction.StopID,
		TripID:  prediction.TripID,

		DirectionID: prediction.DirectionID,

		ObservedAt:   observedAt,
		DelaySeconds: int(prediction.ArrivalTime.Sub(*prediction.ScheduledTime).Seconds()),

		VehicleID: prediction.VehicleID,

		ScheduleRelationship: scheduleRelationship,

		DataSource: datasource,
	}
}

// FixtureRecord is one row of a replay fixture CSV.
type FixtureRecord struct {
	RouteID              string `csv:"route_id"`
	StopID               string `csv:"stop_id"`
	TripID               string `csv:"trip_id"`
	DirectionID          int    `csv:"direction_id"`
	ObservedAt           string `csv:"observed_at"` // RFC 3339
	DelaySeconds         int    `csv:"delay_seconds"`
	VehicleID            string `csv:"vehicle_id"`
	ScheduleRelationship string `csv:"schedule_relationship"`
}

// FromFixtureRecord normalises one replay fixture row.
func FromFixtureRecord(record *FixtureRecord, datasource *transit.DataSource) *transit.ArrivalObservation {
	if record.RouteID == "" || record.StopID == "" {
		log.Warn().Str("trip", record.TripID).Msg("Skipping fixture record without route/stop")
		return nil
	}

	observedAt, err := time.Parse(time.RFC3339, record.ObservedAt)
	if err != nil {
		log.Warn().Err(err).Str("observedat", record.ObservedAt).Msg("Skipping fixture record with malformed timestamp")
		return nil
	}

	scheduleRelationship := transit.ScheduleRelationship(record.ScheduleRelationship)
	switch scheduleRelationship {
	case transit.ScheduleRelationshipScheduled, transit.ScheduleRelationshipSkipped, transit.ScheduleRelationshipNoData:
	case "":
		scheduleRelationship = transit.ScheduleRelationshipScheduled
	default:
		log.Warn().Str("schedulerelationship", record.ScheduleRelationship).Msg("Skipping fixture record with unknown schedule relationship")
		return nil
	}

	// a skipped stop with no recorded delay carries no signal
	if scheduleRelationship == transit.ScheduleRelationshipSkipped && record.DelaySeconds == 0 {
		return nil
	}

	return &transit.ArrivalObservation{
		RouteID: record.RouteID,
		StopID:  record.StopID,
		TripID:  record.TripID,

		DirectionID: record.DirectionID,

		ObservedAt:   observedAt,
		DelaySeconds: record.DelaySeconds,

		VehicleID: record.VehicleID,

		ScheduleRelationship: scheduleRelationship,

		DataSource: datasource,
	}
}
