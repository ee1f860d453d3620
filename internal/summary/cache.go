package summary

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/banshee-data/training.report/internal/monitoring"
	"github.com/banshee-data/training.report/internal/timeutil"
)

const (
	cacheDataFile = "daily_summaries.csv"
	cacheMetaFile = "daily_summaries.json"
)

// cacheMeta records what range the cached CSV covers. Rows alone cannot
// answer that: a day inside the range with no data leaves no row.
type cacheMeta struct {
	AnimalIDs   []string `json:"animal_ids"`
	DateMin     string   `json:"date_min"`
	DateMax     string   `json:"date_max"`
	GeneratedAt string   `json:"generated_at"`
}

// Cache keeps built summaries in a CSV file so repeat queries over the same
// study window skip the database. A request that extends the cached range
// forward builds only the missing days and appends them; any other mismatch
// rebuilds the whole file.
type Cache struct {
	dir     string
	builder *Builder
	clock   timeutil.Clock
}

func NewCache(dir string, builder *Builder, clock timeutil.Clock) *Cache {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Cache{dir: dir, builder: builder, clock: clock}
}

// Load returns summaries for the animals over [dateMin, dateMax], serving
// from the cache file when it covers the request.
func (c *Cache) Load(animalIDs []string, dateMin, dateMax string) ([]DailySummary, error) {
	meta, rows, err := c.read()
	if err != nil {
		monitoring.Logf("summary cache unreadable, rebuilding: %v", err)
		meta = nil
	}

	switch {
	case meta == nil || !sameAnimals(meta.AnimalIDs, animalIDs) || dateMin < meta.DateMin:
		rows, err = c.builder.BuildRange(animalIDs, dateMin, dateMax)
		if err != nil {
			return nil, err
		}
		if err := c.write(cacheMeta{AnimalIDs: animalIDs, DateMin: dateMin, DateMax: dateMax}, rows); err != nil {
			return nil, err
		}
		return filterRange(rows, dateMin, dateMax), nil

	case dateMax > meta.DateMax:
		// Forward extension: build only the uncovered tail.
		from, err := nextDay(meta.DateMax)
		if err != nil {
			return nil, err
		}
		extra, err := c.builder.BuildRange(animalIDs, from, dateMax)
		if err != nil {
			return nil, err
		}
		monitoring.Logf("summary cache extended %s..%s with %d rows", from, dateMax, len(extra))
		rows = append(rows, extra...)
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].AnimalID != rows[j].AnimalID {
				return rows[i].AnimalID < rows[j].AnimalID
			}
			return rows[i].Date < rows[j].Date
		})
		if err := c.write(cacheMeta{AnimalIDs: meta.AnimalIDs, DateMin: meta.DateMin, DateMax: dateMax}, rows); err != nil {
			return nil, err
		}
		return filterRange(rows, dateMin, dateMax), nil

	default:
		return filterRange(rows, dateMin, dateMax), nil
	}
}

// Invalidate removes the cache files. Missing files are not an error.
func (c *Cache) Invalidate() error {
	for _, name := range []string{cacheDataFile, cacheMetaFile} {
		if err := os.Remove(filepath.Join(c.dir, name)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (c *Cache) read() (*cacheMeta, []DailySummary, error) {
	metaBytes, err := os.ReadFile(filepath.Join(c.dir, cacheMetaFile))
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	var meta cacheMeta
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, nil, fmt.Errorf("parsing cache metadata: %w", err)
	}

	f, err := os.Open(filepath.Join(c.dir, cacheDataFile))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	rows, err := ReadSummaries(f)
	if err != nil {
		return nil, nil, err
	}
	return &meta, rows, nil
}

func (c *Cache) write(meta cacheMeta, rows []DailySummary) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	meta.GeneratedAt = c.clock.Now().UTC().Format(time.RFC3339)

	f, err := os.Create(filepath.Join(c.dir, cacheDataFile))
	if err != nil {
		return err
	}
	if err := WriteSummaries(f, rows); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, cacheMetaFile), metaBytes, 0o644)
}

func filterRange(rows []DailySummary, dateMin, dateMax string) []DailySummary {
	out := make([]DailySummary, 0, len(rows))
	for _, r := range rows {
		if r.Date >= dateMin && r.Date <= dateMax {
			out = append(out, r)
		}
	}
	return out
}

func sameAnimals(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func nextDay(date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("bad cached date %q: %w", date, err)
	}
	return t.AddDate(0, 0, 1).Format("2006-01-02"), nil
}
