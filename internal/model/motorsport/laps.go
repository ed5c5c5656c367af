// Package motorsport models the lap-data collaborator at its interface
// boundary. The actual statistics retrieval and lap-time shaping live in a
// separate service; the gateway only needs the shape of what it serves.
package motorsport

import "context"

// LapRecord is one driver's fastest qualifying lap, ranked by position.
type LapRecord struct {
	Position  int    `json:"position"`
	Driver    string `json:"driver"`
	Team      string `json:"team"`
	LapTime   string `json:"lapTime"`
	TimeDelta string `json:"timeDelta"`
	TeamColor string `json:"teamColor"`
}

// PolePosition names the fastest qualifier.
type PolePosition struct {
	Driver string `json:"driver"`
	Time   string `json:"time"`
}

// QualifyingResult is the ranked lap payload the collaborator returns.
type QualifyingResult struct {
	Event        string       `json:"event"`
	Session      string       `json:"session"`
	Results      []LapRecord  `json:"results"`
	Pole         PolePosition `json:"polePosition"`
	TotalDrivers int          `json:"totalDrivers"`
}

// LapSource retrieves ranked qualifying laps for an event.
type LapSource interface {
	Qualifying(ctx context.Context, year int, event string) (QualifyingResult, error)
}
