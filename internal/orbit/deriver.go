package orbit

import (
	"fmt"
	"strings"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/TemirB/satrec-registry/internal/domain"
)

// Gravity models accepted by NewDeriver.
const (
	GravityWGS72 = "wgs72"
	GravityWGS84 = "wgs84"
)

const lineLen = 69

// Deriver turns a TLE pair into an OrbitalState. It holds no mutable state
// and is safe for concurrent use.
type Deriver struct {
	gravity string
}

func NewDeriver(gravity string) (*Deriver, error) {
	switch g := strings.ToLower(strings.TrimSpace(gravity)); g {
	case "":
		return &Deriver{gravity: GravityWGS72}, nil
	case GravityWGS72, GravityWGS84:
		return &Deriver{gravity: g}, nil
	default:
		return nil, fmt.Errorf("unknown gravity model %q", gravity)
	}
}

// Derive validates both lines and computes the satrec. Any structural problem
// or SGP4 initialisation failure is reported as *domain.MalformedTLEError.
//
// go-satellite calls log.Fatal on unparsable input, so every field it reads is
// checked here first.
func (d *Deriver) Derive(lineOne, lineTwo string) (domain.OrbitalState, error) {
	l1 := normalize(lineOne)
	l2 := normalize(lineTwo)

	if err := checkLine(l1, 1); err != nil {
		return domain.OrbitalState{}, err
	}
	if err := checkLine(l2, 2); err != nil {
		return domain.OrbitalState{}, err
	}
	if strings.TrimSpace(l1[2:7]) != strings.TrimSpace(l2[2:7]) {
		return domain.OrbitalState{}, &domain.MalformedTLEError{
			Reason: fmt.Sprintf("catalog number mismatch: %q vs %q", l1[2:7], l2[2:7]),
		}
	}

	state, err := parseElements(l1, l2)
	if err != nil {
		return domain.OrbitalState{}, err
	}
	state.Gravity = d.gravity

	sat := d.initSGP4(l1, l2)
	if sat.Error != 0 {
		return domain.OrbitalState{}, &domain.MalformedTLEError{
			Reason: fmt.Sprintf("sgp4 init failed: code=%d %s", sat.Error, sat.ErrorStr),
		}
	}
	return state, nil
}

func (d *Deriver) initSGP4(l1, l2 string) satellite.Satellite {
	if d.gravity == GravityWGS84 {
		return satellite.TLEToSat(l1, l2, satellite.GravityWGS84)
	}
	return satellite.TLEToSat(l1, l2, satellite.GravityWGS72)
}

func normalize(line string) string {
	return strings.TrimRight(line, " \t\r\n")
}

func checkLine(line string, n int) error {
	if len(line) != lineLen {
		return &domain.MalformedTLEError{Line: n, Reason: fmt.Sprintf("length %d, expected %d", len(line), lineLen)}
	}
	if want := byte('0' + n); line[0] != want || line[1] != ' ' {
		return &domain.MalformedTLEError{Line: n, Reason: fmt.Sprintf("must start with %q", string(want)+" ")}
	}
	last := line[lineLen-1]
	if last < '0' || last > '9' {
		return &domain.MalformedTLEError{Line: n, Reason: fmt.Sprintf("checksum %q is not a digit", last)}
	}
	if got, want := Checksum(line), int(last-'0'); got != want {
		return &domain.MalformedTLEError{Line: n, Reason: fmt.Sprintf("checksum mismatch: computed %d, line has %d", got, want)}
	}
	return nil
}

// Checksum is the modulo-10 sum over the first 68 columns; digits count by
// value, minus signs count as one.
func Checksum(line string) int {
	sum := 0
	for i := 0; i < len(line) && i < lineLen-1; i++ {
		switch c := line[i]; {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	return sum % 10
}
