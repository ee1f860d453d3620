package trials

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var trialColumns = []string{
	"trial", "animal_id", "date", "sess_id", "side", "is_match",
	"sa", "sb", "sound_pair", "hits", "violations", "temperror",
	"helper", "stage", "result",
}

// WriteTrials writes cleaned trials as CSV with a header. The is_match cell
// is empty for sessions without the match field.
func WriteTrials(w io.Writer, rows []Trial) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(trialColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, t := range rows {
		match := ""
		if t.IsMatch != nil {
			match = strconv.FormatBool(*t.IsMatch)
		}
		record := []string{
			strconv.Itoa(t.Index),
			t.AnimalID,
			t.Date,
			strconv.FormatInt(t.SessID, 10),
			t.Side,
			match,
			strconv.FormatFloat(t.SAkHz, 'f', -1, 64),
			strconv.FormatFloat(t.SBkHz, 'f', -1, 64),
			t.SoundPair,
			strconv.Itoa(t.Hit),
			strconv.Itoa(t.Violation),
			strconv.Itoa(t.TempError),
			strconv.Itoa(t.Helper),
			strconv.Itoa(t.Stage),
			strconv.Itoa(t.Result),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing trial %d of session %d: %w", t.Index, t.SessID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
