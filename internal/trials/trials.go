package trials

import (
	"fmt"

	"github.com/banshee-data/training.report/internal/db"
	"github.com/banshee-data/training.report/internal/monitoring"
)

// SessionSource is the fetch contract this package needs from the training
// database. *db.DB satisfies it.
type SessionSource interface {
	SessionsWithProtocol(animalID, dateMin, dateMax string) ([]db.Session, error)
}

// Fetcher assembles the cleaned trial table across animals.
type Fetcher struct {
	src SessionSource
}

func NewFetcher(src SessionSource) *Fetcher {
	return &Fetcher{src: src}
}

// FetchTrainingData returns every cleaned trial for the animals inside the
// window, ordered by animal then session. A session whose blob cannot be
// repaired is logged with its session id and skipped; one corrupt session
// does not lose the rest of the export.
func (f *Fetcher) FetchTrainingData(animalIDs []string, dateMin, dateMax string) ([]Trial, error) {
	var out []Trial
	for _, animalID := range animalIDs {
		sessions, err := f.src.SessionsWithProtocol(animalID, dateMin, dateMax)
		if err != nil {
			return nil, fmt.Errorf("fetching sessions for %s: %w", animalID, err)
		}

		kept := 0
		latest := ""
		for _, s := range sessions {
			trials, err := f.cleanOne(s)
			if err != nil {
				monitoring.Logf("skipping session %d for %s: %v", s.SessID, animalID, err)
				continue
			}
			out = append(out, trials...)
			kept++
			if s.Date > latest {
				latest = s.Date
			}
		}
		if kept > 0 {
			monitoring.Logf("fetched %d sessions for %s with latest date %s", kept, animalID, latest)
		}
	}
	return out, nil
}

func (f *Fetcher) cleanOne(s db.Session) ([]Trial, error) {
	raw, err := DecodeProtocol(s.ProtocolData)
	if err != nil {
		return nil, err
	}
	return CleanSession(s.AnimalID, s.Date, s.SessID, raw)
}
