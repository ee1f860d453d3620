// Command gen-traindata seeds a sqlite database with synthetic training
// data for local development: sessions with protocol blobs, mass, water and
// rig water entries. A fraction of the generated blobs carry the known
// recorder defects so the repair paths get exercised.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/banshee-data/training.report/internal/db"
)

var soundPairs = [][2]float64{
	{12000, 12000},
	{3000, 3000},
	{12000, 3000},
	{3000, 12000},
}

func main() {
	dbPath := flag.String("db", "training_data.db", "output database path")
	animals := flag.String("animals", "R610,R611,R612", "comma-separated animal ids")
	days := flag.Int("days", 30, "number of days to generate, ending today")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	database, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("failed to create database: %v", err)
	}
	defer database.Close()

	animalIDs := strings.Split(*animals, ",")
	start := time.Now().AddDate(0, 0, -*days+1)

	sessID := int64(1)
	sessions, massRows := 0, 0
	for _, animalID := range animalIDs {
		mass := 220 + rng.Float64()*60
		for d := 0; d < *days; d++ {
			date := start.AddDate(0, 0, d).Format("2006-01-02")

			// mass drifts slowly; one day in ten the weigh-in is missed so
			// the carry-over path runs
			mass += rng.Float64()*4 - 2
			if rng.Intn(10) != 0 {
				if err := database.RecordMass(animalID, date, round1(mass), tech(rng)); err != nil {
					log.Fatalf("mass: %v", err)
				}
				massRows++
			}

			if err := database.RecordWater(animalID, date, 4.0, round1(5+rng.Float64()*10)); err != nil {
				log.Fatalf("water: %v", err)
			}
			// occasional spurious zero duplicate, as seen upstream
			if rng.Intn(12) == 0 {
				if err := database.RecordWater(animalID, date, 0, 0); err != nil {
					log.Fatalf("water duplicate: %v", err)
				}
			}
			if err := database.RecordRigWater(animalID, date, round1(rng.Float64()*3)); err != nil {
				log.Fatalf("rig water: %v", err)
			}

			for _, s := range genSessions(rng, sessID, animalID, date) {
				if err := database.RecordSession(s); err != nil {
					log.Fatalf("session: %v", err)
				}
				sessID++
				sessions++
			}
		}
	}

	log.Printf("✓ Seeded %s: %d sessions, %d mass rows for %d animals over %d days",
		*dbPath, sessions, massRows, len(animalIDs), *days)
}

// genSessions produces one or two sessions for the day, rarely zero.
func genSessions(rng *rand.Rand, nextID int64, animalID, date string) []*db.Session {
	n := 1
	switch rng.Intn(10) {
	case 0:
		n = 0
	case 1, 2:
		n = 2
	}

	out := make([]*db.Session, 0, n)
	startHour := 9
	for i := 0; i < n; i++ {
		trials := 40 + rng.Intn(260)
		hit := 0.5 + rng.Float64()*0.4
		viol := rng.Float64() * 0.2
		right := float64(trials) * hit * (0.4 + rng.Float64()*0.2)
		left := float64(trials)*hit - right

		blob := genProtocolBlob(rng, trials)

		durMin := 60 + rng.Intn(120)
		s := &db.Session{
			SessID:       nextID + int64(i),
			AnimalID:     animalID,
			Date:         date,
			RigID:        fmt.Sprintf("Rig%02d", 10+rng.Intn(6)),
			StartTime:    fmt.Sprintf("%02d:00:00", startHour),
			EndTime:      fmt.Sprintf("%02d:%02d:00", startHour+durMin/60, durMin%60),
			DoneTrials:   trials,
			TotalCorrect: &hit,
			ViolationFrc: &viol,
			RightCorrect: &right,
			LeftCorrect:  &left,
			ProtocolData: blob,
		}
		out = append(out, s)
		startHour += 4
	}
	return out
}

func genProtocolBlob(rng *rand.Rand, trials int) []byte {
	blob := map[string]any{}

	sides := make([]byte, trials)
	sa := make([]float64, trials)
	sb := make([]float64, trials)
	result := make([]float64, trials)
	hits := make([]float64, trials)
	temperror := make([]float64, trials)
	helper := make([]float64, trials)
	stage := make([]float64, trials)
	dmsType := make([]float64, trials)

	for i := 0; i < trials; i++ {
		pair := soundPairs[rng.Intn(len(soundPairs))]
		sa[i], sb[i] = pair[0], pair[1]
		if sa[i] == sb[i] {
			dmsType[i] = 1
		}
		if rng.Intn(2) == 0 {
			sides[i] = 'l'
		} else {
			sides[i] = 'r'
		}
		if rng.Float64() < 0.1 {
			result[i] = 3 // violation
		} else if rng.Float64() < 0.7 {
			result[i] = 1
			hits[i] = 1
		} else {
			result[i] = 2
		}
		stage[i] = 2
	}

	blob["sides"] = string(sides)
	blob["sa"] = sa
	blob["result"] = result
	blob["hits"] = hits
	blob["temperror"] = temperror
	blob["helper"] = helper
	blob["stage"] = stage
	blob["dms_type"] = dmsType

	// recorder defects: extra trailing sb entry, or a crash-truncated
	// result array
	switch rng.Intn(10) {
	case 0:
		blob["sb"] = append(sb, 999)
	case 1:
		blob["sb"] = sb
		blob["result"] = result[:trials-trials/5]
	default:
		blob["sb"] = sb
	}

	data, err := json.Marshal(blob)
	if err != nil {
		log.Fatalf("marshal blob: %v", err)
	}
	return data
}

func tech(rng *rand.Rand) string {
	techs := []string{"kt12", "jd03", "ma07"}
	return techs[rng.Intn(len(techs))]
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
