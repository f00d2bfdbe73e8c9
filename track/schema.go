package track

import (
	"encoding/json"
	"fmt"
)

// speedTable converts a switch-angle key ("wisselhoek") to a maximum speed
// in km/h (spec.md §6.1). Keys sharing a speed are grouped in the source
// timetable data; duplicated here per literal value for direct lookup.
var speedTable = map[string]float64{
	"4.5":  40,
	"7":    40,
	"8":    40,
	"9":    40,
	"10":   40,
	"12":   60,
	"15":   80,
	"18":   80,
	"18.5": 80,
	"20":   125,
	"29":   140,
	"34.7": 140,
	"39.1": 160,
}

// straightSpeedKmh is the sentinel maximum speed (km/h) for straight track
// carrying no switch-angle restriction (spec.md §6.1: "default 360 km/h").
const straightSpeedKmh = 360

// kmhToMs converts a km/h speed to m/s (spec.md §6.1: "/3.6").
func kmhToMs(kmh float64) float64 { return kmh / 3.6 }

// speedFor resolves a wisselhoek key (nil for straight track) to m/s.
func speedFor(wisselhoek *string) float64 {
	if wisselhoek == nil {
		return kmhToMs(straightSpeedKmh)
	}
	if kmh, ok := speedTable[*wisselhoek]; ok {
		return kmhToMs(kmh)
	}
	return kmhToMs(straightSpeedKmh)
}

// TrackPartInput is one element of the topology document's "trackParts"
// array (spec.md §6.1).
type TrackPartInput struct {
	ID                 int      `json:"id"`
	Name               string   `json:"name"`
	Length             float64  `json:"length"`
	Type               string   `json:"type"`
	ASide              []int    `json:"aSide"`
	BSide              []int    `json:"bSide"`
	StationPlatform    bool     `json:"stationPlatform"`
	SawMovementAllowed bool     `json:"sawMovementAllowed"`
	Wisselhoek         *string  `json:"wisselhoek,omitempty"`
}

// SignalInput is one element of the topology document's "signals" array.
type SignalInput struct {
	Name  string `json:"name"`
	Track int    `json:"track"`
	Side  string `json:"side"`
}

// StationInput is one element of the topology document's "stations" array.
// Platform may be encoded as a JSON string or number in source documents;
// rawPlatform is normalized to a string by Platform().
type StationInput struct {
	StationName string          `json:"stationName"`
	RawPlatform json.RawMessage `json:"platform"`
	TrackID     int             `json:"trackId"`
}

// Platform normalizes RawPlatform (string or number in the source document)
// to its string form.
func (s StationInput) Platform() string {
	var str string
	if err := json.Unmarshal(s.RawPlatform, &str); err == nil {
		return str
	}
	var num json.Number
	if err := json.Unmarshal(s.RawPlatform, &num); err == nil {
		return num.String()
	}
	return string(s.RawPlatform)
}

// Topology is the full topology input document (spec.md §6.1).
type Topology struct {
	TrackParts      []TrackPartInput  `json:"trackParts"`
	Signals         []SignalInput     `json:"signals"`
	Stations        []StationInput    `json:"stations"`
	DistanceMarkers map[string]float64 `json:"distanceMarkers"`
}

// stationKey builds the "{NAME.upper()}|{platform}" lookup key (spec.md §6.1/§4.1).
func stationKey(name, platform string) string {
	upper := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper[i] = c
	}
	return fmt.Sprintf("%s|%s", upper, platform)
}
