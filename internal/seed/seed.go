// Package seed loads reference content (emotions, weekly baby/mom states)
// from JSON exports into the database. Seeding is idempotent: every row is
// upserted by its natural key.
package seed

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mamatrack/mamatrack-api/internal/domain"
	"github.com/mamatrack/mamatrack-api/internal/repository"
)

const (
	emotionsFile   = "emotions.json"
	momStatesFile  = "mom_states.json"
	babyStatesFile = "baby_states.json"

	minSeedWeek = 1
	maxSeedWeek = 42
)

// objectID matches the {"$oid": "..."} wrapper the source export uses for
// document ids.
type objectID struct {
	OID string `json:"$oid"`
}

type emotionJSON struct {
	ID    objectID `json:"_id"`
	Title string   `json:"title"`
}

type momStateJSON struct {
	WeekNumber int `json:"weekNumber"`
	Feelings   struct {
		States         []string `json:"states"`
		SensationDescr string   `json:"sensationDescr"`
	} `json:"feelings"`
	ComfortTips []domain.ComfortTip `json:"comfortTips"`
}

type babyStateJSON struct {
	WeekNumber      int      `json:"weekNumber"`
	Analogy         *string  `json:"analogy"`
	BabySize        float64  `json:"babySize"`
	BabyWeight      float64  `json:"babyWeight"`
	Image           string   `json:"image"`
	BabyActivity    string   `json:"babyActivity"`
	BabyDevelopment string   `json:"babyDevelopment"`
	InterestingFact string   `json:"interestingFact"`
	MomDailyTips    []string `json:"momDailyTips"`
}

// Result counts what each file contributed. Skipped rows are malformed
// entries (missing id or title, week number out of range), not errors.
type Result struct {
	Total    int
	Upserted int
	Skipped  int
}

type Seeder struct {
	emotions repository.EmotionRepository
	weeks    repository.WeekRepository
}

func NewSeeder(emotions repository.EmotionRepository, weeks repository.WeekRepository) *Seeder {
	return &Seeder{emotions: emotions, weeks: weeks}
}

// Run seeds every reference file found under dataDir. A missing file is
// skipped with a warning so partial exports still load.
func (s *Seeder) Run(dataDir string) error {
	steps := []struct {
		file string
		fn   func(path string) (Result, error)
	}{
		{emotionsFile, s.seedEmotions},
		{momStatesFile, s.seedMomStates},
		{babyStatesFile, s.seedBabyStates},
	}
	for _, step := range steps {
		path := filepath.Join(dataDir, step.file)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			slog.Warn("seed file missing, skipping", "file", step.file)
			continue
		}
		result, err := step.fn(path)
		if err != nil {
			return fmt.Errorf("seed %s: %w", step.file, err)
		}
		slog.Info("seeded reference data",
			"file", step.file,
			"total", result.Total,
			"upserted", result.Upserted,
			"skipped", result.Skipped,
		)
	}
	return nil
}

func (s *Seeder) seedEmotions(path string) (Result, error) {
	var rows []emotionJSON
	if err := readJSONFile(path, &rows); err != nil {
		return Result{}, err
	}
	result := Result{Total: len(rows)}
	for _, row := range rows {
		title := strings.TrimSpace(row.Title)
		if row.ID.OID == "" || title == "" {
			result.Skipped++
			continue
		}
		if err := s.emotions.Upsert(&domain.Emotion{ID: row.ID.OID, Title: title}); err != nil {
			return result, err
		}
		result.Upserted++
	}
	return result, nil
}

func (s *Seeder) seedMomStates(path string) (Result, error) {
	var rows []momStateJSON
	if err := readJSONFile(path, &rows); err != nil {
		return Result{}, err
	}
	result := Result{Total: len(rows)}
	for _, row := range rows {
		if row.WeekNumber < minSeedWeek || row.WeekNumber > maxSeedWeek {
			result.Skipped++
			continue
		}
		state := &domain.WeekMomState{
			WeekNumber:     row.WeekNumber,
			FeelingsStates: trimStrings(row.Feelings.States),
			SensationDescr: strings.TrimSpace(row.Feelings.SensationDescr),
			ComfortTips:    domain.ComfortTipList(row.ComfortTips),
		}
		if err := s.weeks.UpsertMomState(state); err != nil {
			return result, err
		}
		result.Upserted++
	}
	return result, nil
}

func (s *Seeder) seedBabyStates(path string) (Result, error) {
	var rows []babyStateJSON
	if err := readJSONFile(path, &rows); err != nil {
		return Result{}, err
	}
	result := Result{Total: len(rows)}
	for _, row := range rows {
		if row.WeekNumber < minSeedWeek || row.WeekNumber > maxSeedWeek {
			result.Skipped++
			continue
		}
		state := &domain.WeekBabyState{
			WeekNumber:      row.WeekNumber,
			Analogy:         row.Analogy,
			BabySize:        row.BabySize,
			BabyWeight:      row.BabyWeight,
			Image:           strings.TrimSpace(row.Image),
			BabyActivity:    strings.TrimSpace(row.BabyActivity),
			BabyDevelopment: strings.TrimSpace(row.BabyDevelopment),
			InterestingFact: strings.TrimSpace(row.InterestingFact),
			MomDailyTips:    trimStrings(row.MomDailyTips),
		}
		if err := s.weeks.UpsertBabyState(state); err != nil {
			return result, err
		}
		result.Upserted++
	}
	return result, nil
}

func readJSONFile(path string, dest any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func trimStrings(in []string) domain.StringList {
	out := make(domain.StringList, 0, len(in))
	for _, s := range in {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
