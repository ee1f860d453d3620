// Package trials turns raw per-session protocol blobs into a clean
// trial-by-trial table, repairing the known logging defects in the
// upstream history recorder before rows are materialized.
package trials

import (
	"encoding/json"
	"fmt"
)

// ProtocolKind identifies how a session's protocol blob is interpreted.
// DMS sessions carry a match/non-match field that both relabels trials and
// lets corrupted stimulus-B values be reconstructed; PWM sessions do not.
type ProtocolKind int

const (
	KindPWM ProtocolKind = iota
	KindDMS
)

func (k ProtocolKind) String() string {
	if k == KindDMS {
		return "dms"
	}
	return "pwm"
}

// RawProtocol is one session's protocol blob as stored in the sessions
// table. Arrays are parallel, one entry per started trial; the recorder
// bugs the cleaner repairs can leave sb one entry long and result short.
type RawProtocol struct {
	Sides     string    `json:"sides"` // packed, one letter per trial
	SA        []float64 `json:"sa"`    // stimulus A, Hz
	SB        []float64 `json:"sb"`    // stimulus B, Hz
	Result    []float64 `json:"result"`
	Hits      []float64 `json:"hits"`
	TempError []float64 `json:"temperror"`
	Helper    []float64 `json:"helper"`
	Stage     []float64 `json:"stage"`

	// DMSType is present only for DMS sessions: nonzero means the trial
	// was a match trial.
	DMSType []float64 `json:"dms_type,omitempty"`
}

// Kind is resolved once per session, not re-checked field by field.
func (p *RawProtocol) Kind() ProtocolKind {
	if p.DMSType != nil {
		return KindDMS
	}
	return KindPWM
}

// DecodeProtocol parses a protocol blob fetched from the sessions table.
func DecodeProtocol(blob []byte) (*RawProtocol, error) {
	var p RawProtocol
	if err := json.Unmarshal(blob, &p); err != nil {
		return nil, fmt.Errorf("decoding protocol blob: %w", err)
	}
	if p.SA == nil {
		return nil, fmt.Errorf("protocol blob has no sa array")
	}
	return &p, nil
}
