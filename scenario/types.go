// Package scenario turns a timetable document (stations visited, train
// types, per-train movements) into the block-graph routes and kinematic
// profiles the kinematics package's sweep consumes, then propagates the
// resulting flexibility figures back over each agent's route (spec.md
// §4.5/§6.2).
package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for scenario construction.
var (
	ErrStationNotFound  = errors.New("scenario: station not found in block graph")
	ErrNoRoute          = errors.New("scenario: no route between consecutive stops")
	ErrRouteTooShort    = errors.New("scenario: a train's itinerary needs at least two locations")
	ErrUnknownTrainType = errors.New("scenario: movement references an unknown train unit type")
)

// TrainType is one rolling-stock profile from the input document's "types"
// array (spec.md §6.2).
type TrainType struct {
	Name               string  `json:"name"`
	Length             float64 `json:"length"`             // meters
	SpeedKmh           float64 `json:"speed"`               // km/h; converted to m/s on Build
	Acceleration       float64 `json:"acceleration"`        // m/s^2
	Deceleration       float64 `json:"deceleration"`        // m/s^2
	MinimumStationTime float64 `json:"minimum_station_time"` // seconds
}

// Stop is one intermediate stop in a train's itinerary.
type Stop struct {
	Location        string  `json:"location"`
	Time            float64 `json:"time"`
	ExpectedArrival float64 `json:"expected_arrival"`
}

// Movements is one train's itinerary: a start and end location plus any
// intermediate stops.
type Movements struct {
	StartLocation string  `json:"startLocation"`
	EndLocation   string  `json:"endLocation"`
	StartTime     float64 `json:"startTime"`
	EndTime       float64 `json:"endTime"`
	Stops         []Stop  `json:"stops"`
}

// UnmarshalJSON accepts the current object shape as well as the legacy
// singleton-list shape ("movements": [{...}]) that older scenario documents
// still carry (spec.md §6.2's migration note).
func (m *Movements) UnmarshalJSON(data []byte) error {
	type alias Movements

	var obj alias
	if err := json.Unmarshal(data, &obj); err == nil && (obj.StartLocation != "" || obj.EndLocation != "") {
		*m = Movements(obj)
		return nil
	}

	var list []alias
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("scenario: movements is neither an object nor a singleton list: %w", err)
	}
	if len(list) == 0 {
		return fmt.Errorf("scenario: movements list is empty")
	}
	*m = Movements(list[0])
	return nil
}

// Train is one scheduled service: a rolling-stock composition plus an
// itinerary.
type Train struct {
	TrainNumber    string    `json:"trainNumber"`
	TrainUnitTypes []string  `json:"trainUnitTypes"`
	Movements      Movements `json:"movements"`
}

// Input is the top-level scenario document (spec.md §6.2).
type Input struct {
	WalkingSpeed      float64     `json:"walkingSpeed"`
	SightReactionTime float64     `json:"sightReactionTime"`
	SetupTime         float64     `json:"setupTime"`
	ReleaseTime       float64     `json:"releaseTime"`
	Types             []TrainType `json:"types"`
	Trains            []Train     `json:"trains"`
}
