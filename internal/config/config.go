package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/training.report/internal/units"
)

// DefaultConfigPath is the path to the canonical study defaults file.
// This is the single source of truth for default study parameters.
const DefaultConfigPath = "config/study.defaults.json"

// StudyConfig represents the root configuration for a training study:
// which animals to summarise, the date window, and the reconciliation
// defaults. Fields omitted from the JSON file retain their defaults, so
// partial configs are safe. There is no process-wide fallback animal list;
// callers must pass a StudyConfig explicitly.
type StudyConfig struct {
	// Animals included in summary and trial exports
	AnimalIDs []string `json:"animal_ids,omitempty"`

	// Date window (YYYY-MM-DD, inclusive)
	DateMin *string `json:"date_min,omitempty"`
	DateMax *string `json:"date_max,omitempty"`

	// Database and export locations
	DBPath    *string `json:"db_path,omitempty"`
	OutputDir *string `json:"output_dir,omitempty"`

	// Restriction defaults applied when the pub was not run. Percent of body
	// mass: one value for animals under the mass cutoff, one for the rest.
	SmallAnimalPercent *float64 `json:"small_animal_percent,omitempty"`
	LargeAnimalPercent *float64 `json:"large_animal_percent,omitempty"`
	SmallAnimalCutoffG *float64 `json:"small_animal_cutoff_g,omitempty"`

	// How many days back to look for a body mass entry when the exact date
	// has none.
	MassLookbackDays *int `json:"mass_lookback_days,omitempty"`

	// Units for training duration in summary rows ("hours", "minutes", "seconds")
	DurationUnits *string `json:"duration_units,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyStudyConfig returns a StudyConfig with all fields set to nil.
// Use LoadStudyConfig to load actual values from a defaults file.
func EmptyStudyConfig() *StudyConfig {
	return &StudyConfig{}
}

// LoadStudyConfig loads a StudyConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the
// max file size.
func LoadStudyConfig(path string) (*StudyConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyStudyConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *StudyConfig) Validate() error {
	if c.DateMin != nil && *c.DateMin != "" {
		if _, err := time.Parse("2006-01-02", *c.DateMin); err != nil {
			return fmt.Errorf("invalid date_min %q: %w", *c.DateMin, err)
		}
	}
	if c.DateMax != nil && *c.DateMax != "" {
		if _, err := time.Parse("2006-01-02", *c.DateMax); err != nil {
			return fmt.Errorf("invalid date_max %q: %w", *c.DateMax, err)
		}
	}

	if c.SmallAnimalPercent != nil {
		if *c.SmallAnimalPercent <= 0 || *c.SmallAnimalPercent > 100 {
			return fmt.Errorf("small_animal_percent must be between 0 and 100, got %f", *c.SmallAnimalPercent)
		}
	}
	if c.LargeAnimalPercent != nil {
		if *c.LargeAnimalPercent <= 0 || *c.LargeAnimalPercent > 100 {
			return fmt.Errorf("large_animal_percent must be between 0 and 100, got %f", *c.LargeAnimalPercent)
		}
	}
	if c.SmallAnimalCutoffG != nil && *c.SmallAnimalCutoffG <= 0 {
		return fmt.Errorf("small_animal_cutoff_g must be positive, got %f", *c.SmallAnimalCutoffG)
	}

	if c.MassLookbackDays != nil && *c.MassLookbackDays < 1 {
		return fmt.Errorf("mass_lookback_days must be at least 1, got %d", *c.MassLookbackDays)
	}

	if c.DurationUnits != nil && !units.IsValidDurationUnit(*c.DurationUnits) {
		return fmt.Errorf("invalid duration_units %q (valid: hours, minutes, seconds)", *c.DurationUnits)
	}

	return nil
}

// GetDateMin returns the date_min value or the open-window default.
func (c *StudyConfig) GetDateMin() string {
	if c.DateMin == nil || *c.DateMin == "" {
		return "2000-01-01"
	}
	return *c.DateMin
}

// GetDateMax returns the date_max value or the open-window default.
func (c *StudyConfig) GetDateMax() string {
	if c.DateMax == nil || *c.DateMax == "" {
		return "2030-01-01"
	}
	return *c.DateMax
}

// GetDBPath returns the db_path value or the default.
func (c *StudyConfig) GetDBPath() string {
	if c.DBPath == nil || *c.DBPath == "" {
		return "training_data.db"
	}
	return *c.DBPath
}

// GetOutputDir returns the output_dir value or the default.
func (c *StudyConfig) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return "exports"
	}
	return *c.OutputDir
}

// GetSmallAnimalPercent returns the restriction percent assumed for animals
// under the mass cutoff when no pub entry exists.
func (c *StudyConfig) GetSmallAnimalPercent() float64 {
	if c.SmallAnimalPercent == nil {
		return 4.0
	}
	return *c.SmallAnimalPercent
}

// GetLargeAnimalPercent returns the restriction percent assumed for animals
// at or over the mass cutoff when no pub entry exists.
func (c *StudyConfig) GetLargeAnimalPercent() float64 {
	if c.LargeAnimalPercent == nil {
		return 3.0
	}
	return *c.LargeAnimalPercent
}

// GetSmallAnimalCutoffG returns the mass cutoff in grams separating the two
// restriction defaults.
func (c *StudyConfig) GetSmallAnimalCutoffG() float64 {
	if c.SmallAnimalCutoffG == nil {
		return 100.0
	}
	return *c.SmallAnimalCutoffG
}

// GetMassLookbackDays returns the mass_lookback_days value or the default.
func (c *StudyConfig) GetMassLookbackDays() int {
	if c.MassLookbackDays == nil {
		return 1
	}
	return *c.MassLookbackDays
}

// GetDurationUnits returns the duration_units value or the default.
func (c *StudyConfig) GetDurationUnits() string {
	if c.DurationUnits == nil || *c.DurationUnits == "" {
		return units.Hours
	}
	return *c.DurationUnits
}
