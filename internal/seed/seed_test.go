package seed

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mamatrack/mamatrack-api/internal/repository"
)

func writeSeedFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func newTestSeeder(t *testing.T) (*Seeder, repository.EmotionRepository, repository.WeekRepository) {
	t.Helper()
	db, err := repository.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	emotions := repository.NewEmotionRepository(db)
	weeks := repository.NewWeekRepository(db)
	return NewSeeder(emotions, weeks), emotions, weeks
}

func TestRunSeedsAllFiles(t *testing.T) {
	seeder, emotions, weeks := newTestSeeder(t)
	dir := t.TempDir()

	writeSeedFile(t, dir, "emotions.json", `[
		{"_id":{"$oid":"emo-1"},"title":"Joy"},
		{"_id":{"$oid":"emo-2"},"title":"  Calm  "},
		{"_id":{"$oid":""},"title":"orphan"},
		{"_id":{"$oid":"emo-3"},"title":"   "}
	]`)
	writeSeedFile(t, dir, "mom_states.json", `[
		{"weekNumber":12,"feelings":{"states":["tired"," hopeful "],"sensationDescr":"mild nausea"},"comfortTips":[{"category":"sleep","tip":"use a pillow"}]},
		{"weekNumber":0,"feelings":{"states":[],"sensationDescr":""},"comfortTips":[]},
		{"weekNumber":43,"feelings":{"states":[],"sensationDescr":""},"comfortTips":[]}
	]`)
	writeSeedFile(t, dir, "baby_states.json", `[
		{"weekNumber":12,"analogy":"lime","babySize":5.4,"babyWeight":14,"image":"/img/12.png","babyActivity":"kicks","babyDevelopment":"organs forming","interestingFact":"can yawn","momDailyTips":[" walk ","","drink water"]}
	]`)

	if err := seeder.Run(dir); err != nil {
		t.Fatalf("run: %v", err)
	}

	list, err := emotions.List()
	if err != nil {
		t.Fatalf("list emotions: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("seeded %d emotions, want 2 (invalid rows skipped)", len(list))
	}
	calm, err := emotions.FindByID("emo-2")
	if err != nil {
		t.Fatalf("find emo-2: %v", err)
	}
	if calm.Title != "Calm" {
		t.Fatalf("title = %q, want trimmed Calm", calm.Title)
	}

	mom, err := weeks.FindMomState(12)
	if err != nil {
		t.Fatalf("find mom state: %v", err)
	}
	if len(mom.FeelingsStates) != 2 || mom.FeelingsStates[1] != "hopeful" {
		t.Fatalf("feelings = %v", mom.FeelingsStates)
	}
	if _, err := weeks.FindMomState(43); err == nil {
		t.Fatal("out-of-range week must be skipped")
	}

	baby, err := weeks.FindBabyState(12)
	if err != nil {
		t.Fatalf("find baby state: %v", err)
	}
	if baby.Analogy == nil || *baby.Analogy != "lime" {
		t.Fatalf("analogy = %v", baby.Analogy)
	}
	if len(baby.MomDailyTips) != 2 {
		t.Fatalf("tips = %v, empty strings must be dropped", baby.MomDailyTips)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	seeder, emotions, _ := newTestSeeder(t)
	dir := t.TempDir()
	writeSeedFile(t, dir, "emotions.json", `[{"_id":{"$oid":"emo-1"},"title":"Joy"}]`)

	if err := seeder.Run(dir); err != nil {
		t.Fatalf("first run: %v", err)
	}
	writeSeedFile(t, dir, "emotions.json", `[{"_id":{"$oid":"emo-1"},"title":"Joy Renamed"}]`)
	if err := seeder.Run(dir); err != nil {
		t.Fatalf("second run: %v", err)
	}

	list, err := emotions.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d emotions after reseed, want 1", len(list))
	}
	if list[0].Title != "Joy Renamed" {
		t.Fatalf("title = %q, upsert must update", list[0].Title)
	}
}

func TestRunToleratesMissingFiles(t *testing.T) {
	seeder, _, _ := newTestSeeder(t)
	if err := seeder.Run(t.TempDir()); err != nil {
		t.Fatalf("run with empty dir: %v", err)
	}
}
