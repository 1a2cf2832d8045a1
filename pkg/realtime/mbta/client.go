package mbta

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/commuteguardian/commuteguardian/pkg/realtime/normalizer"
	"github.com/commuteguardian/commuteguardian/pkg/util"
	"github.com/rs/zerolog/log"
)

const DefaultBaseURL = "https://api-v3.mbta.com"

// Client talks to the MBTA v3 JSON API.
type Client struct {
	BaseURL string
	APIKey  string
}

func NewClient() *Client {
	env := util.GetEnvironmentVariables()

	baseURL := DefaultBaseURL
	if env["COMMUTE_GUARDIAN_MBTA_API_URL"] != "" {
		baseURL = env["COMMUTE_GUARDIAN_MBTA_API_URL"]
	}

	return &Client{
		BaseURL: baseURL,
		APIKey:  env["COMMUTE_GUARDIAN_MBTA_API_KEY"],
	}
}

func (c *Client) get(path string, target interface{}) error {
	requestURL := c.BaseURL + path

	req, _ := http.NewRequest("GET", requestURL, nil)
	if c.APIKey != "" {
		req.Header["x-api-key"] = []string{c.APIKey}
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("MBTA API returned status %d", resp.StatusCode)
	}

	jsonBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	return json.Unmarshal(jsonBytes, target)
}

type resourceIdentifier struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type relationship struct {
	Data *resourceIdentifier `json:"data"`
}

type predictionResource struct {
	ID         string `json:"id"`
	Attributes struct {
		ArrivalTime          *string `json:"arrival_time"`
		DepartureTime        *string `json:"departure_time"`
		DirectionID          int     `json:"direction_id"`
		ScheduleRelationship *string `json:"schedule_relationship"`
	} `json:"attributes"`
	Relationships struct {
		Route    relationship `json:"route"`
		Stop     relationship `json:"stop"`
		Trip     relationship `json:"trip"`
		Vehicle  relationship `json:"vehicle"`
		Schedule relationship `json:"schedule"`
	} `json:"relationships"`
}

type includedResource struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes struct {
		ArrivalTime   *string `json:"arrival_time"`
		DepartureTime *string `json:"departure_time"`

		// stop / route attributes when included
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"attributes"`
}

type predictionsResponse struct {
	Data     []predictionResource `json:"data"`
	Included []includedResource   `json:"included"`
}

// GetPredictions fetches current predictions for a route with their
// scheduled counterparts, flattened into normaliser documents.
func (c *Client) GetPredictions(routeID string) ([]*normalizer.PredictionDocument, error) {
	var response predictionsResponse

	path := fmt.Sprintf("/predictions?filter[route]=%s&include=schedule&sort=arrival_time", routeID)
	if err := c.get(path, &response); err != nil {
		return nil, err
	}

	scheduleTimes := map[string]*time.Time{}
	for _, included := range response.Included {
		if included.Type != "schedule" {
			continue
		}

		timeValue := included.Attributes.ArrivalTime
		if timeValue == nil {
			timeValue = included.Attributes.DepartureTime
		}
		if timeValue == nil {
			continue
		}

		parsed, err := time.Parse(time.RFC3339, *timeValue)
		if err != nil {
			log.Warn().Err(err).Str("schedule", included.ID).Msg("Skipping schedule with malformed timestamp")
			continue
		}

		scheduleTimes[included.ID] = &parsed
	}

	retrievedAt := time.Now()

	var documents []*normalizer.PredictionDocument

	for _, prediction := range response.Data {
		document := &normalizer.PredictionDocument{
			DirectionID: prediction.Attributes.DirectionID,
			RetrievedAt: retrievedAt,
		}

		if prediction.Relationships.Route.Data != nil {
			document.RouteID = prediction.Relationships.Route.Data.ID
		}
		if prediction.Relationships.Stop.Data != nil {
			document.StopID = prediction.Relationships.Stop.Data.ID
		}
		if prediction.Relationships.Trip.Data != nil {
			document.TripID = prediction.Relationships.Trip.Data.ID
		}
		if prediction.Relationships.Vehicle.Data != nil {
			document.VehicleID = prediction.Relationships.Vehicle.Data.ID
		}

		if prediction.Attributes.ScheduleRelationship != nil {
			document.ScheduleRelationship = *prediction.Attributes.ScheduleRelationship
		}

		timeValue := prediction.Attributes.ArrivalTime
		if timeValue == nil {
			timeValue = prediction.Attributes.DepartureTime
		}
		if timeValue != nil {
			parsed, err := time.Parse(time.RFC3339, *timeValue)
			if err == nil {
				document.ArrivalTime = &parsed
			}
		}

		if prediction.Relationships.Schedule.Data != nil {
			document.ScheduledTime = scheduleTimes[prediction.Relationships.Schedule.Data.ID]
		}

		documents = append(documents, document)
	}

	return documents, nil
}

type StopAttributes struct {
	Name               string  `json:"name"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	LocationType       int     `json:"location_type"`
	ParentStation      *string `json:"parent_station"`
	PlatformCode       *string `json:"platform_code"`
	WheelchairBoarding int     `json:"wheelchair_boarding"`
}

type StopResource struct {
	ID         string         `json:"id"`
	Attributes StopAttributes `json:"attributes"`
}

type StopsResponse struct {
	Data []StopResource `json:"data"`
}

type RouteAttributes struct {
	ShortName string `json:"short_name"`
	LongName  string `json:"long_name"`
	Type      int    `json:"type"`
	Color     string `json:"color"`
	TextColor string `json:"text_color"`
}

type RouteResource struct {
	ID         string          `json:"id"`
	Attributes RouteAttributes `json:"attributes"`
}

type RoutesResponse struct {
	Data []RouteResource `json:"data"`
}

func (c *Client) GetAllStops() (*StopsResponse, error) {
	var response StopsResponse
	if err := c.get("/stops", &response); err != nil {
		return nil, err
	}

	return &response, nil
}

func (c *Client) GetAllRoutes() (*RoutesResponse, error) {
	var response RoutesResponse
	if err := c.get("/routes", &response); err != nil {
		return nil, err
	}

	return &response, nil
}
