package summary

import (
	"fmt"
	"sort"

	"github.com/banshee-data/training.report/internal/config"
	"github.com/banshee-data/training.report/internal/monitoring"
)

// Builder assembles the per-animal per-day summary table. Session
// aggregates and the water/mass ledgers are reconciled row by row; a row
// that cannot be completed is logged and skipped rather than failing the
// whole run.
type Builder struct {
	src      QuerySource
	cfg      *config.StudyConfig
	resolver *FieldResolver
}

func NewBuilder(src QuerySource, cfg *config.StudyConfig) *Builder {
	return &Builder{
		src:      src,
		cfg:      cfg,
		resolver: NewFieldResolver(src, cfg),
	}
}

// BuildRange produces one DailySummary per (animal, date) pair where the
// animal has at least one qualifying session or a mass entry in the window.
// Rows come back sorted by animal id then date.
func (b *Builder) BuildRange(animalIDs []string, dateMin, dateMax string) ([]DailySummary, error) {
	if dateMin > dateMax {
		return nil, fmt.Errorf("date range %s..%s is inverted", dateMin, dateMax)
	}

	var out []DailySummary
	for _, animalID := range animalIDs {
		dates, err := b.src.SessionDates(animalID, dateMin, dateMax)
		if err != nil {
			return nil, fmt.Errorf("listing session dates for %s: %w", animalID, err)
		}
		for _, date := range dates {
			row, err := b.BuildDay(animalID, date)
			if err != nil {
				monitoring.Logf("skipping %s %s: %v", animalID, date, err)
				continue
			}
			out = append(out, *row)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].AnimalID != out[j].AnimalID {
			return out[i].AnimalID < out[j].AnimalID
		}
		return out[i].Date < out[j].Date
	})

	monitoring.Logf("fetched %d daily summaries for %d animals", len(out), len(animalIDs))
	return out, nil
}

// BuildDay reconciles one animal-day: aggregate the day's sessions, then
// resolve mass, restriction percent and water volumes with their fallback
// rules, and derive the volume target and deficit.
func (b *Builder) BuildDay(animalID, date string) (*DailySummary, error) {
	sessions, err := b.src.SessionsForDay(animalID, date)
	if err != nil {
		return nil, fmt.Errorf("fetching sessions: %w", err)
	}
	stats, err := AggregateSessions(sessions, b.cfg.GetDurationUnits())
	if err != nil {
		return nil, fmt.Errorf("aggregating sessions: %w", err)
	}

	mass, tech, err := b.resolver.ResolveMass(animalID, date)
	if err != nil {
		return nil, fmt.Errorf("resolving mass: %w", err)
	}
	percent, err := b.resolver.ResolveRestrictionPercent(animalID, date)
	if err != nil {
		return nil, fmt.Errorf("resolving restriction percent: %w", err)
	}
	pub, err := b.resolver.ResolvePubVolume(animalID, date)
	if err != nil {
		return nil, fmt.Errorf("resolving pub volume: %w", err)
	}
	rig, err := b.resolver.ResolveRigVolume(animalID, date)
	if err != nil {
		return nil, fmt.Errorf("resolving rig volume: %w", err)
	}

	target := b.resolver.VolumeTarget(animalID, date, mass, percent)

	return &DailySummary{
		AnimalID:      animalID,
		Date:          date,
		RigID:         stats.RigID,
		DoneTrials:    stats.DoneTrials,
		SessionCount:  stats.SessionCount,
		StartTime:     stats.StartTime,
		TrainDur:      stats.TrainDur,
		TrialRate:     stats.TrialRate,
		HitRate:       stats.HitRate,
		ViolationRate: stats.ViolationRate,
		SideBias:      stats.SideBias,
		MassG:         mass.Value,
		MassSource:    mass.Source,
		Tech:          tech,
		PercentTarget: percent.Value,
		PubVolume:     pub.Value,
		RigVolume:     rig.Value,
		VolumeTarget:  target,
		WaterDeficit:  WaterDeficit(pub.Value, rig.Value, target),
	}, nil
}
