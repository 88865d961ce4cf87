package domain

import (
	"strings"
	"time"
)

// TLE is a Two-Line Element pair. Lines are only ever replaced together with
// a freshly derived OrbitalState.
type TLE struct {
	LineOne string `json:"lineOne"`
	LineTwo string `json:"lineTwo"`
}

// OrbitalState is the satrec derived from a TLE pair: the SGP4 initial
// elements, kept next to the raw lines so propagation never re-parses text.
// Angles are radians, mean motion is radians per minute.
type OrbitalState struct {
	SatNum         string    `json:"satnum"`
	Classification string    `json:"classification"`
	IntlDesignator string    `json:"intldesg"`
	EpochYear      int       `json:"epochyr"`
	EpochDays      float64   `json:"epochdays"`
	Epoch          time.Time `json:"epoch"`
	JDSatEpoch     float64   `json:"jdsatepoch"`
	NDot           float64   `json:"ndot"`
	NDDot          float64   `json:"nddot"`
	BStar          float64   `json:"bstar"`
	Inclination    float64   `json:"inclo"`
	RAAN           float64   `json:"nodeo"`
	Eccentricity   float64   `json:"ecco"`
	ArgPerigee     float64   `json:"argpo"`
	MeanAnomaly    float64   `json:"mo"`
	MeanMotion     float64   `json:"no"`
	RevNumber      int       `json:"revnum"`
	ElementNumber  int       `json:"elnum"`
	Gravity        string    `json:"gravity"`
}

// Satellite is the persisted record. Satrec always equals Derive(TLE).
type Satellite struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	TLE       TLE          `json:"tle"`
	Satrec    OrbitalState `json:"satrec"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// NewSatellite is a single ingestion entry.
type NewSatellite struct {
	Name    string `json:"name"`
	LineOne string `json:"lineOne"`
	LineTwo string `json:"lineTwo"`
}

func (n NewSatellite) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return InvalidInput("name is required")
	}
	return nil
}

// BulkResult summarises a bulk ingestion.
type BulkResult struct {
	Inserted int      `json:"inserted"`
	IDs      []string `json:"ids"`
}
