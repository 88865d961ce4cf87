package orbit

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/TemirB/satrec-registry/internal/domain"
)

const (
	deg2rad = math.Pi / 180.0
	// minutes per day over a full turn: converts rev/day to rad/min.
	xpdotp = 1440.0 / (2.0 * math.Pi)

	julianUnixEpoch = 2440587.5
)

type fieldErr struct {
	line  int
	field string
	raw   string
	err   error
}

func (f *fieldErr) asMalformed() error {
	return &domain.MalformedTLEError{
		Line:   f.line,
		Reason: fmt.Sprintf("invalid %s %q: %v", f.field, f.raw, f.err),
	}
}

// fieldReader collects the first parse failure so parseElements reads as a
// straight list of columns.
type fieldReader struct {
	line int
	src  string
	bad  *fieldErr
}

func (r *fieldReader) fail(field, raw string, err error) {
	if r.bad == nil {
		r.bad = &fieldErr{line: r.line, field: field, raw: raw, err: err}
	}
}

// Field grammars, checked on the exact text the SGP4 initialiser parses:
// it drops at most two blanks per field and then calls strconv, so anything
// strconv would accept beyond plain fixed-point (inf, nan, hex, exponents)
// must be rejected here.
var (
	fixedPoint  = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)$`)
	impliedExp  = regexp.MustCompile(`^[+-]?\.[0-9]+e[+-]?[0-9]+$`)
	unsignedDec = regexp.MustCompile(`^[0-9]+(\.[0-9]*)?$`)
	digits      = regexp.MustCompile(`^[0-9]+$`)
)

// squeeze removes up to two blanks, the same way the SGP4 initialiser does.
func squeeze(s string) string {
	return strings.Replace(s, " ", "", 2)
}

func (r *fieldReader) match(field, raw, s string, re *regexp.Regexp) bool {
	if !re.MatchString(s) {
		r.fail(field, raw, fmt.Errorf("not a fixed-format number"))
		return false
	}
	return true
}

func (r *fieldReader) float(field, raw, s string, re *regexp.Regexp) float64 {
	if !r.match(field, raw, s, re) {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.fail(field, raw, err)
	}
	return v
}

// decimal reads a fixed-point column such as inclination or mean motion.
func (r *fieldReader) decimal(field string, from, to int) float64 {
	raw := r.src[from:to]
	return r.float(field, raw, squeeze(raw), fixedPoint)
}

// unsigned reads a column that is parsed verbatim, so blanks are not allowed.
func (r *fieldReader) unsigned(field string, from, to int) float64 {
	raw := r.src[from:to]
	return r.float(field, raw, raw, unsignedDec)
}

// digitsOnly reads a column that must be all digits, blanks included.
func (r *fieldReader) digitsOnly(field string, from, to int) int {
	return r.atoi(field, r.src[from:to], r.src[from:to])
}

func (r *fieldReader) integer(field string, from, to int, blankOK bool) int {
	raw := r.src[from:to]
	s := strings.TrimSpace(raw)
	if s == "" && blankOK {
		return 0
	}
	return r.atoi(field, raw, s)
}

func (r *fieldReader) atoi(field, raw, s string) int {
	if !r.match(field, raw, s, digits) {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		r.fail(field, raw, err)
	}
	return v
}

// impliedDecimal reads "±NNNNN±E" fields (nddot, bstar): a mantissa with an
// assumed leading decimal point followed by a power-of-ten exponent.
func (r *fieldReader) impliedDecimal(field string, from int) float64 {
	raw := r.src[from : from+8]
	s := squeeze(raw[:1] + "." + raw[1:6] + "e" + raw[6:8])
	return r.float(field, raw, s, impliedExp)
}

func parseElements(l1, l2 string) (domain.OrbitalState, error) {
	r1 := &fieldReader{line: 1, src: l1}
	r2 := &fieldReader{line: 2, src: l2}

	st := domain.OrbitalState{
		SatNum:         strings.TrimSpace(l1[2:7]),
		Classification: strings.TrimSpace(l1[7:8]),
		IntlDesignator: strings.TrimSpace(l1[9:17]),
	}
	r1.integer("catalog number", 2, 7, false)
	yy := r1.digitsOnly("epoch year", 18, 20)
	st.EpochDays = r1.unsigned("epoch day", 20, 32)
	ndot := r1.decimal("first derivative of mean motion", 33, 43)
	nddot := r1.impliedDecimal("second derivative of mean motion", 44)
	st.BStar = r1.impliedDecimal("bstar", 53)
	st.ElementNumber = r1.integer("element number", 64, 68, true)

	r2.integer("catalog number", 2, 7, false)
	incl := r2.decimal("inclination", 8, 16)
	raan := r2.decimal("right ascension", 17, 25)
	ecc := r2.digitsOnly("eccentricity", 26, 33)
	argp := r2.decimal("argument of perigee", 34, 42)
	mo := r2.decimal("mean anomaly", 43, 51)
	no := r2.decimal("mean motion", 52, 63)
	st.RevNumber = r2.integer("revolution number", 63, 68, true)

	for _, r := range []*fieldReader{r1, r2} {
		if r.bad != nil {
			return domain.OrbitalState{}, r.bad.asMalformed()
		}
	}
	if no <= 0 {
		return domain.OrbitalState{}, &domain.MalformedTLEError{Line: 2, Reason: "mean motion must be positive"}
	}
	if st.EpochDays < 1 || st.EpochDays >= 367 {
		return domain.OrbitalState{}, &domain.MalformedTLEError{Line: 1, Reason: fmt.Sprintf("epoch day %v out of range", st.EpochDays)}
	}

	st.EpochYear = fullYear(yy)
	st.Epoch = epochTime(st.EpochYear, st.EpochDays)
	st.JDSatEpoch = float64(st.Epoch.UnixNano())/float64(24*time.Hour) + julianUnixEpoch

	st.MeanMotion = no / xpdotp
	st.NDot = ndot / (xpdotp * 1440.0)
	st.NDDot = nddot / (xpdotp * 1440.0 * 1440.0)
	st.Inclination = incl * deg2rad
	st.RAAN = raan * deg2rad
	st.Eccentricity = float64(ecc) / 1e7
	st.ArgPerigee = argp * deg2rad
	st.MeanAnomaly = mo * deg2rad

	if !finite(st) {
		return domain.OrbitalState{}, &domain.MalformedTLEError{Reason: "elements overflow to a non-finite value"}
	}
	return st, nil
}

func finite(st domain.OrbitalState) bool {
	for _, v := range []float64{
		st.EpochDays, st.JDSatEpoch, st.NDot, st.NDDot, st.BStar,
		st.Inclination, st.RAAN, st.Eccentricity, st.ArgPerigee, st.MeanAnomaly, st.MeanMotion,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// fullYear applies the NORAD two-digit year pivot: 57-99 -> 19xx, 00-56 -> 20xx.
func fullYear(yy int) int {
	if yy >= 57 {
		return 1900 + yy
	}
	return 2000 + yy
}

// epochTime converts a 1-based fractional day of year into UTC time,
// truncated to microseconds so the value survives JSON round trips unchanged.
func epochTime(year int, days float64) time.Time {
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	return start.Add(time.Duration((days - 1) * float64(24*time.Hour))).Truncate(time.Microsecond)
}
