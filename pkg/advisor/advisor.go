package advisor

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/commuteguardian/commuteguardian/pkg/risk"
	"github.com/commuteguardian/commuteguardian/pkg/transit"
)

// ErrInvalidJourney rejects degenerate journey requests (same origin and
// destination, or a non-positive journey time).
var ErrInvalidJourney = errors.New("invalid journey parameters")

// DepartureWindow is one candidate departure, derived per request.
type DepartureWindow struct {
	DepartureTime       time.Time `groups:"basic"`
	ExpectedArrivalTime time.Time `groups:"basic"`

	DurationMinutes float64 `groups:"basic"`

	RiskLevel  risk.RiskLevel `groups:"basic"`
	Confidence float64        `groups:"basic"`

	AdviceText string `groups:"basic"`
}

type Advice struct {
	FromStopID string `groups:"basic"`
	ToStopID   string `groups:"basic"`
	RouteID    string `groups:"basic"`

	GeneratedAt time.Time `groups:"basic"`

	DepartureWindows []DepartureWindow   `groups:"basic"`
	RiskAssessment   risk.RiskAssessment `groups:"basic"`
}

type Advisor struct {
	config Config

	classifier *risk.Classifier

	now func() time.Time
}

func NewAdvisor(config Config, classifier *risk.Classifier) *Advisor {
	return &Advisor{
		config: config,

		classifier: classifier,

		now: time.Now,
	}
}

// Advise produces exactly three progressively more conservative departure
// windows plus the journey's risk assessment. Confidence never decreases and
// risk never increases across the three windows.
//
// Confidence calibration: 0.5 + 0.5*onTimePercentage for the leave-now
// window, clamped to [0,1], stepped up by ConfidenceStep per window of
// waiting. More historical reliability never yields lower confidence.
func (a *Advisor) Advise(fromStopID string, toStopID string, routeID string, journeyTimeMinutes float64) (*Advice, error) {
	if fromStopID == toStopID {
		return nil, fmt.Errorf("%w: origin and destination are the same stop", ErrInvalidJourney)
	}

	if journeyTimeMinutes <= 0 || math.IsNaN(journeyTimeMinutes) || math.IsInf(journeyTimeMinutes, 0) {
		return nil, fmt.Errorf("%w: journey time must be a positive number of minutes", ErrInvalidJourney)
	}

	generatedAt := a.now()
	journeyDuration := time.Duration(journeyTimeMinutes * float64(time.Minute))

	bucketKey := transit.BucketKeyFor(routeID, fromStopID, generatedAt)
	assessment := a.classifier.Classify(routeID, fromStopID, &bucketKey)

	predictedDelay := time.Duration(assessment.PredictedDelaySeconds * float64(time.Second))
	delayElevated := assessment.PredictedDelaySeconds > a.config.ElevatedDelaySeconds

	leaveNowConfidence := clamp01(0.5 + 0.5*assessment.HistoricalOnTime)
	leaveNowRisk := assessment.OverallRisk

	shortWaitRisk := leaveNowRisk
	if delayElevated {
		// waiting lets the currently tracked delay spike pass
		shortWaitRisk = betterBand(leaveNowRisk)
	}
	cycleWaitRisk := betterBand(shortWaitRisk)

	shortWaitDeparture := a.config.shortWait().Shift(generatedAt)
	cycleWaitDeparture := a.config.cycleWait().Shift(generatedAt)

	leaveNowArrival := generatedAt.Add(journeyDuration).Add(predictedDelay)

	windows := []DepartureWindow{
		{
			DepartureTime:       generatedAt,
			ExpectedArrivalTime: leaveNowArrival,
			DurationMinutes:     leaveNowArrival.Sub(generatedAt).Minutes(),
			RiskLevel:           leaveNowRisk,
			Confidence:          leaveNowConfidence,
			AdviceText:          leaveNowText(leaveNowRisk),
		},
		{
			DepartureTime:       shortWaitDeparture,
			ExpectedArrivalTime: shortWaitDeparture.Add(journeyDuration),
			DurationMinutes:     journeyDuration.Minutes(),
			RiskLevel:           shortWaitRisk,
			Confidence:          clamp01(leaveNowConfidence + a.config.ConfidenceStep),
			AdviceText:          waitText(shortWaitDeparture.Sub(generatedAt), delayElevated),
		},
		{
			DepartureTime:       cycleWaitDeparture,
			ExpectedArrivalTime: cycleWaitDeparture.Add(journeyDuration),
			DurationMinutes:     journeyDuration.Minutes(),
			RiskLevel:           cycleWaitRisk,
			Confidence:          clamp01(leaveNowConfidence + 2*a.config.ConfidenceStep),
			AdviceText:          "Wait for the next service cycle - lowest risk of the three options",
		},
	}

	return &Advice{
		FromStopID: fromStopID,
		ToStopID:   toStopID,
		RouteID:    routeID,

		GeneratedAt: generatedAt,

		DepartureWindows: windows,
		RiskAssessment:   assessment,
	}, nil
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}

	return value
}

func betterBand(level risk.RiskLevel) risk.RiskLevel {
	switch level {
	case risk.RiskLevelHigh:
		return risk.RiskLevelMedium
	case risk.RiskLevelMedium:
		return risk.RiskLevelLow
	}

	return risk.RiskLevelLow
}

func leaveNowText(level risk.RiskLevel) string {
	switch level {
	case risk.RiskLevelHigh:
		return "Leave now only if you must - heavy delays on this route"
	case risk.RiskLevelMedium:
		return "Leave now for reasonable reliability with some delay risk"
	}

	return "Leave now - route is currently running reliably"
}

func waitText(wait time.Duration, delayElevated bool) string {
	minutes := int(wait.Minutes())

	if delayElevated {
		return fmt.Sprintf("Wait %d minutes to let the current delay spike pass", minutes)
	}

	return fmt.Sprintf("Wait %d minutes for better reliability and on-time arrival", minutes)
}
