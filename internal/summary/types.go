package summary

// ValueSource records how a resolved scalar was obtained, so rows built from
// substituted data can be audited downstream.
type ValueSource string

const (
	// SourceMeasured means the value came from exactly one matching row.
	SourceMeasured ValueSource = "measured"
	// SourceCarriedOver means the value was carried over from a prior day.
	SourceCarriedOver ValueSource = "carried-over"
	// SourceDefaulted means no row matched and a documented default was used.
	SourceDefaulted ValueSource = "defaulted"
	// SourceMaxOfDuplicates means more than one row matched and the maximum
	// was taken. This is a workaround for a known upstream duplicate-row
	// defect, not a general tie-break policy.
	SourceMaxOfDuplicates ValueSource = "max-of-duplicates"
)

// UnknownTech is the technician sentinel recorded when a mass value is
// carried over from a prior day and the weigher is unknown.
const UnknownTech = "NA"

// Scalar is a resolved field value together with its provenance. Keeping the
// source explicit distinguishes "not measured, defaulted to zero" from a
// legitimate zero measurement.
type Scalar struct {
	Value  float64
	Source ValueSource
}

// DailySummary is one reconciled row per (animal, date). Count fields are
// zero and rate/time fields nil when no session ran that day; water and mass
// fields are always populated because a row is only built for keys where
// mass resolution succeeded.
type DailySummary struct {
	AnimalID string `json:"animal_id"`
	Date     string `json:"date"` // YYYY-MM-DD

	// Session half
	RigID         string   `json:"rigid"`
	DoneTrials    int      `json:"n_done_trials"`
	SessionCount  int      `json:"n_sessions"`
	StartTime     *string  `json:"start_time"`     // HH:MM:SS, earliest session
	TrainDur      *float64 `json:"train_dur"`      // in the configured units
	TrialRate     *float64 `json:"trial_rate"`     // trials per hour
	HitRate       *float64 `json:"hit_rate"`       // trial-weighted across sessions
	ViolationRate *float64 `json:"viol_rate"`      // trial-weighted across sessions
	SideBias      *float64 `json:"side_bias"`      // negative = left, positive = right

	// Water and mass half
	MassG         float64     `json:"mass"`
	MassSource    ValueSource `json:"mass_source"`
	Tech          string      `json:"tech"`
	PercentTarget float64     `json:"percent_target"` // 0 means "not set"
	PubVolume     float64     `json:"pub_volume"`     // mL
	RigVolume     float64     `json:"rig_volume"`     // mL
	VolumeTarget  float64     `json:"volume_target"`  // mL
	WaterDeficit  float64     `json:"water_diff"`     // (pub+rig) - target, mL
}
