package trials

import (
	"fmt"

	"github.com/banshee-data/training.report/internal/monitoring"
	"github.com/banshee-data/training.report/internal/units"
)

// Result codes written by the protocol recorder.
const (
	ResultViolation = 3
	ResultCrash     = 5
)

// saToSB is the fixed stimulus substitution used on DMS non-match trials.
// It also defines the set of legal stimulus-A values (Hz).
var saToSB = map[float64]float64{
	12000: 3000,
	3000:  12000,
}

// LengthMismatchError reports a session whose field arrays still disagree
// in length after every known repair has been applied.
type LengthMismatchError struct {
	SessID int64
	Field  string
	Got    int
	Want   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("session %d: %s has %d entries, want %d", e.SessID, e.Field, e.Got, e.Want)
}

// UnknownStimulusError reports a stimulus-A value outside the known set,
// which makes stimulus-B reconstruction impossible.
type UnknownStimulusError struct {
	SessID int64
	Trial  int // 1-based
	SA     float64
}

func (e *UnknownStimulusError) Error() string {
	return fmt.Sprintf("session %d trial %d: unknown stimulus A %g Hz", e.SessID, e.Trial, e.SA)
}

// Trial is one cleaned, completed trial.
type Trial struct {
	Index     int     `json:"trial"` // 1-based within the session
	AnimalID  string  `json:"animal_id"`
	Date      string  `json:"date"`
	SessID    int64   `json:"sess_id"`
	Side      string  `json:"side"` // "l" or "r"
	IsMatch   *bool   `json:"is_match,omitempty"`
	SAkHz     float64 `json:"sa"`
	SBkHz     float64 `json:"sb"`
	SoundPair string  `json:"sound_pair"` // "sa, sb" in kHz, one decimal
	Hit       int     `json:"hits"`
	Violation int     `json:"violations"`
	TempError int     `json:"temperror"`
	Helper    int     `json:"helper"`
	Stage     int     `json:"stage"`
	Result    int     `json:"result"`
}

// CleanSession repairs one session's raw arrays and materializes its
// completed trials. The repairs run in a fixed order: side expansion,
// match relabeling, stimulus-B length repair, result padding, then a
// uniform-length check that is fatal for the session if it fails. Trials
// whose result is the crash code are needed to satisfy the length
// invariant but never appear in the output.
func CleanSession(animalID, date string, sessID int64, raw *RawProtocol) ([]Trial, error) {
	n := len(raw.SA)

	sides := expandSides(raw.Sides)

	var isMatch []bool
	if raw.Kind() == KindDMS {
		isMatch = make([]bool, len(raw.DMSType))
		for i, v := range raw.DMSType {
			isMatch[i] = v != 0
		}
	}

	sb := raw.SB
	if len(raw.SA) != len(sb) {
		repaired, err := repairSB(sessID, raw.SA, sb, isMatch)
		if err != nil {
			return nil, err
		}
		sb = repaired
	}

	result := raw.Result
	if len(result) < n {
		result = padResults(result, n)
	}

	if err := checkLengths(sessID, n, sides, isMatch, sb, result, raw); err != nil {
		return nil, err
	}

	trials := make([]Trial, 0, n)
	for i := 0; i < n; i++ {
		if int(result[i]) == ResultCrash {
			continue
		}
		saKHz := units.HzToKHz(raw.SA[i])
		sbKHz := units.HzToKHz(sb[i])
		t := Trial{
			Index:     i + 1,
			AnimalID:  animalID,
			Date:      date,
			SessID:    sessID,
			SAkHz:     saKHz,
			SBkHz:     sbKHz,
			SoundPair: fmt.Sprintf("%.1f, %.1f", saKHz, sbKHz),
			Hit:       intAt(raw.Hits, i),
			TempError: intAt(raw.TempError, i),
			Helper:    intAt(raw.Helper, i),
			Stage:     intAt(raw.Stage, i),
			Result:    int(result[i]),
		}
		if int(result[i]) == ResultViolation {
			t.Violation = 1
		}
		if i < len(sides) {
			t.Side = sides[i]
		}
		if isMatch != nil {
			m := isMatch[i]
			t.IsMatch = &m
		}
		trials = append(trials, t)
	}
	return trials, nil
}

// expandSides unpacks the recorder's packed side string ("lrlr...") into
// one label per trial.
func expandSides(packed string) []string {
	out := make([]string, len(packed))
	for i, c := range packed {
		out[i] = string(c)
	}
	return out
}

// repairSB fixes the off-by-one recorder bug that leaves sb one entry
// longer than sa. On DMS sessions every sb value is reconstructed: equal
// to sa on match trials, the fixed substitution otherwise. Without the
// match field only the length can be fixed, and the values stay suspect.
func repairSB(sessID int64, sa, sb []float64, isMatch []bool) ([]float64, error) {
	if isMatch == nil {
		monitoring.Logf("session %d: sb values incorrect, only fixing length", sessID)
		if len(sb) == 0 {
			return sb, nil
		}
		return sb[:len(sb)-1], nil
	}

	out := make([]float64, len(sa))
	for i := range sa {
		if i < len(isMatch) && isMatch[i] {
			out[i] = sa[i]
			continue
		}
		mapped, ok := saToSB[sa[i]]
		if !ok {
			return nil, &UnknownStimulusError{SessID: sessID, Trial: i + 1, SA: sa[i]}
		}
		out[i] = mapped
	}
	return out, nil
}

// padResults right-pads a crash-truncated result array with the crash code
// up to n entries, preserving the recorded prefix.
func padResults(result []float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = ResultCrash
	}
	copy(out, result)
	return out
}

func checkLengths(sessID int64, n int, sides []string, isMatch []bool, sb, result []float64, raw *RawProtocol) error {
	check := func(field string, got int) *LengthMismatchError {
		if got != n {
			return &LengthMismatchError{SessID: sessID, Field: field, Got: got, Want: n}
		}
		return nil
	}
	if err := check("sides", len(sides)); err != nil {
		return err
	}
	if isMatch != nil {
		if err := check("is_match", len(isMatch)); err != nil {
			return err
		}
	}
	if err := check("sb", len(sb)); err != nil {
		return err
	}
	if err := check("result", len(result)); err != nil {
		return err
	}
	for field, arr := range map[string][]float64{
		"hits": raw.Hits, "temperror": raw.TempError,
		"helper": raw.Helper, "stage": raw.Stage,
	} {
		if arr == nil {
			continue
		}
		if err := check(field, len(arr)); err != nil {
			return err
		}
	}
	return nil
}

func intAt(arr []float64, i int) int {
	if i >= len(arr) {
		return 0
	}
	return int(arr[i])
}
