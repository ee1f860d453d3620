package summary

import (
	"errors"
	"testing"

	"github.com/banshee-data/training.report/internal/db"
)

func TestResolveMassMeasured(t *testing.T) {
	src := newFakeSource()
	src.mass[key("R610", "2023-05-01")] = db.MassEntry{MassG: 250.5, Tech: "kt12"}

	r := NewFieldResolver(src, testStudyConfig())
	mass, tech, err := r.ResolveMass("R610", "2023-05-01")
	if err != nil {
		t.Fatalf("ResolveMass: %v", err)
	}
	if mass.Value != 250.5 || mass.Source != SourceMeasured {
		t.Errorf("got %+v, want 250.5 measured", mass)
	}
	if tech != "kt12" {
		t.Errorf("tech = %q, want kt12", tech)
	}
}

func TestResolveMassCarriedOver(t *testing.T) {
	src := newFakeSource()
	src.mass[key("R610", "2023-04-30")] = db.MassEntry{MassG: 248.0, Tech: "kt12"}

	r := NewFieldResolver(src, testStudyConfig())
	mass, tech, err := r.ResolveMass("R610", "2023-05-01")
	if err != nil {
		t.Fatalf("ResolveMass: %v", err)
	}
	if mass.Value != 248.0 || mass.Source != SourceCarriedOver {
		t.Errorf("got %+v, want 248.0 carried-over", mass)
	}
	if tech != UnknownTech {
		t.Errorf("tech = %q, want %q", tech, UnknownTech)
	}
}

func TestResolveMassExhaustedLookback(t *testing.T) {
	src := newFakeSource()
	// Two days back is outside the default one-day lookback.
	src.mass[key("R610", "2023-04-29")] = db.MassEntry{MassG: 248.0, Tech: "kt12"}

	r := NewFieldResolver(src, testStudyConfig())
	_, _, err := r.ResolveMass("R610", "2023-05-01")
	if !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("err = %v, want wrapped db.ErrNotFound", err)
	}
}

func TestResolveRestrictionPercent(t *testing.T) {
	tests := []struct {
		name       string
		rows       []float64
		wantValue  float64
		wantSource ValueSource
	}{
		{"no rows is unset", nil, 0, SourceDefaulted},
		{"single row", []float64{4.5}, 4.5, SourceMeasured},
		{"duplicate zero row takes max", []float64{0, 4.5}, 4.5, SourceMaxOfDuplicates},
		{"max regardless of order", []float64{4.5, 0}, 4.5, SourceMaxOfDuplicates},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource()
			if tt.rows != nil {
				src.restriction[key("R610", "2023-05-01")] = tt.rows
			}
			r := NewFieldResolver(src, testStudyConfig())
			got, err := r.ResolveRestrictionPercent("R610", "2023-05-01")
			if err != nil {
				t.Fatalf("ResolveRestrictionPercent: %v", err)
			}
			if got.Value != tt.wantValue || got.Source != tt.wantSource {
				t.Errorf("got %+v, want {%v %v}", got, tt.wantValue, tt.wantSource)
			}
		})
	}
}

func TestResolvePubVolume(t *testing.T) {
	src := newFakeSource()
	src.pub[key("R610", "2023-05-01")] = []float64{0, 18.2}

	r := NewFieldResolver(src, testStudyConfig())
	got, err := r.ResolvePubVolume("R610", "2023-05-01")
	if err != nil {
		t.Fatalf("ResolvePubVolume: %v", err)
	}
	if got.Value != 18.2 || got.Source != SourceMaxOfDuplicates {
		t.Errorf("got %+v, want 18.2 max-of-duplicates", got)
	}

	missing, err := r.ResolvePubVolume("R610", "2023-05-02")
	if err != nil {
		t.Fatalf("ResolvePubVolume missing day: %v", err)
	}
	if missing.Value != 0 || missing.Source != SourceDefaulted {
		t.Errorf("got %+v, want 0 defaulted", missing)
	}
}

func TestResolveRigVolumeNotTracked(t *testing.T) {
	src := newFakeSource()
	r := NewFieldResolver(src, testStudyConfig())

	got, err := r.ResolveRigVolume("R610", "2023-05-01")
	if err != nil {
		t.Fatalf("ResolveRigVolume: %v", err)
	}
	if got.Value != 0 || got.Source != SourceDefaulted {
		t.Errorf("got %+v, want 0 defaulted", got)
	}
}

func TestVolumeTarget(t *testing.T) {
	r := NewFieldResolver(newFakeSource(), testStudyConfig())

	tests := []struct {
		name    string
		mass    float64
		percent Scalar
		want    float64
	}{
		{"explicit percent", 250, Scalar{Value: 4.5, Source: SourceMeasured}, 11.25},
		{"unset percent small animal", 80, Scalar{Value: 0, Source: SourceDefaulted}, 3.2},
		{"unset percent large animal", 150, Scalar{Value: 0, Source: SourceDefaulted}, 4.5},
		{"rounded to two decimals", 83.3, Scalar{Value: 4, Source: SourceMeasured}, 3.33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.VolumeTarget("R610", "2023-05-01", Scalar{Value: tt.mass, Source: SourceMeasured}, tt.percent)
			if got != tt.want {
				t.Errorf("VolumeTarget(%v g, %+v) = %v, want %v", tt.mass, tt.percent, got, tt.want)
			}
		})
	}
}

func TestWaterDeficit(t *testing.T) {
	if got := WaterDeficit(18.5, 1.25, 11.25); got != 8.5 {
		t.Errorf("WaterDeficit = %v, want 8.5", got)
	}
	if got := WaterDeficit(2, 0, 10); got != -8 {
		t.Errorf("WaterDeficit = %v, want -8", got)
	}
}
