package summary

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/banshee-data/training.report/internal/config"
	"github.com/banshee-data/training.report/internal/db"
	"github.com/banshee-data/training.report/internal/monitoring"
)

// FieldResolver resolves a single scalar per (animal, date) from zero or
// more raw rows, applying the documented default when data is absent or
// ambiguous. Every applied fallback is reported through monitoring.Logf.
type FieldResolver struct {
	src QuerySource
	cfg *config.StudyConfig
}

// NewFieldResolver returns a resolver reading from src with the study's
// fallback parameters.
func NewFieldResolver(src QuerySource, cfg *config.StudyConfig) *FieldResolver {
	return &FieldResolver{src: src, cfg: cfg}
}

// ResolveMass returns the animal's mass on the date, or the most recent
// prior day's mass within the configured lookback. A carried-over mass gets
// the UnknownTech sentinel because the weigher is unknown. There is no
// further fallback: exhausting the lookback is an error the caller must
// propagate, since the volume target depends on mass.
func (r *FieldResolver) ResolveMass(animalID, date string) (Scalar, string, error) {
	entry, err := r.src.MassFor(animalID, date)
	if err == nil {
		return Scalar{Value: entry.MassG, Source: SourceMeasured}, entry.Tech, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return Scalar{}, "", err
	}

	day, parseErr := time.Parse("2006-01-02", date)
	if parseErr != nil {
		return Scalar{}, "", fmt.Errorf("invalid date %q: %w", date, parseErr)
	}

	for back := 1; back <= r.cfg.GetMassLookbackDays(); back++ {
		prev := day.AddDate(0, 0, -back).Format("2006-01-02")
		entry, err := r.src.MassFor(animalID, prev)
		if err == nil {
			monitoring.Logf("mass data not found for %s on %s, using mass from %s", animalID, date, prev)
			return Scalar{Value: entry.MassG, Source: SourceCarriedOver}, UnknownTech, nil
		}
		if !errors.Is(err, db.ErrNotFound) {
			return Scalar{}, "", err
		}
	}

	return Scalar{}, "", fmt.Errorf("mass for %s on %s (lookback %d days): %w",
		animalID, date, r.cfg.GetMassLookbackDays(), db.ErrNotFound)
}

// ResolveRestrictionPercent returns the animal's restriction target as a
// percent of body mass. Zero rows yields the 0 sentinel meaning "not set",
// resolved later by VolumeTarget; more than one row yields the maximum, the
// documented workaround for the upstream duplicate-zero-row defect.
func (r *FieldResolver) ResolveRestrictionPercent(animalID, date string) (Scalar, error) {
	targets, err := r.src.RestrictionTargets(animalID, date)
	if err != nil {
		return Scalar{}, err
	}

	switch len(targets) {
	case 0:
		monitoring.Logf("no restriction target for %s on %s, marking unset", animalID, date)
		return Scalar{Value: 0, Source: SourceDefaulted}, nil
	case 1:
		return Scalar{Value: targets[0], Source: SourceMeasured}, nil
	default:
		max := targets[0]
		for _, t := range targets[1:] {
			if t > max {
				max = t
			}
		}
		monitoring.Logf("%d restriction targets for %s on %s, taking max %.2f", len(targets), animalID, date, max)
		return Scalar{Value: max, Source: SourceMaxOfDuplicates}, nil
	}
}

// ResolvePubVolume returns the water volume drunk in the pub in mL. Zero
// rows means the pub was not run and resolves to 0; duplicates resolve to
// the maximum (same upstream defect as the restriction target).
func (r *FieldResolver) ResolvePubVolume(animalID, date string) (Scalar, error) {
	vols, err := r.src.PubVolumes(animalID, date)
	if err != nil {
		return Scalar{}, err
	}

	switch len(vols) {
	case 0:
		monitoring.Logf("no pub volume for %s on %s, defaulting to 0 mL", animalID, date)
		return Scalar{Value: 0, Source: SourceDefaulted}, nil
	case 1:
		return Scalar{Value: vols[0], Source: SourceMeasured}, nil
	default:
		max := vols[0]
		for _, v := range vols[1:] {
			if v > max {
				max = v
			}
		}
		monitoring.Logf("%d pub volumes for %s on %s, taking max %.2f", len(vols), animalID, date, max)
		return Scalar{Value: max, Source: SourceMaxOfDuplicates}, nil
	}
}

// ResolveRigVolume returns the water volume drunk in the rig in mL. Rig
// water is not tracked on every day; a missing row resolves to 0 with a
// warning rather than an error.
func (r *FieldResolver) ResolveRigVolume(animalID, date string) (Scalar, error) {
	vol, err := r.src.RigVolume(animalID, date)
	if errors.Is(err, db.ErrNotFound) {
		monitoring.Logf("rig volume wasn't tracked for %s on %s, defaulting to 0 mL", animalID, date)
		return Scalar{Value: 0, Source: SourceDefaulted}, nil
	}
	if err != nil {
		return Scalar{}, err
	}
	return Scalar{Value: vol, Source: SourceMeasured}, nil
}

// VolumeTarget computes the daily water allotment in mL from the resolved
// mass and restriction percent. The 0 percent sentinel is substituted with
// the species-dependent minimum before the product is taken.
func (r *FieldResolver) VolumeTarget(animalID, date string, mass, percent Scalar) float64 {
	pct := percent.Value
	if pct == 0 {
		if mass.Value < r.cfg.GetSmallAnimalCutoffG() {
			pct = r.cfg.GetSmallAnimalPercent()
		} else {
			pct = r.cfg.GetLargeAnimalPercent()
		}
		monitoring.Logf("restriction target unset for %s on %s, assuming %.1f%%", animalID, date, pct)
	}
	return round2((pct / 100) * mass.Value)
}

// WaterDeficit is measured intake (pub + rig) minus the computed target.
// Negative means the animal drank under target. No rounding is applied.
func WaterDeficit(pubML, rigML, targetML float64) float64 {
	return (pubML + rigML) - targetML
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
