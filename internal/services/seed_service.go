package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"marketing-ops/internal/store"
	"marketing-ops/models"

	"gopkg.in/yaml.v3"
)

// SeedData is the seed document. JSON bodies are accepted too since JSON is
// valid YAML.
type SeedData struct {
	Events  []models.EventInput             `yaml:"events" json:"events"`
	Team    []models.TeamMemberInput        `yaml:"team" json:"team"`
	History []models.HistoricalContentInput `yaml:"history" json:"history"`
}

type TableSeedResult struct {
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Dropped  []string `json:"dropped_columns,omitempty"`
}

type SeedReport struct {
	Tables map[string]*TableSeedResult `json:"tables"`
}

func ParseSeed(data []byte) (*SeedData, error) {
	var seed SeedData
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, invalidf("invalid seed document: %v", err)
	}
	if len(seed.Events) == 0 && len(seed.Team) == 0 && len(seed.History) == 0 {
		return nil, invalidf("seed document is empty")
	}
	return &seed, nil
}

func LoadSeedFile(path string) (*SeedData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

type SeedService struct {
	Store *store.Store
	now   func() time.Time
}

func NewSeedService(s *store.Store) *SeedService {
	return &SeedService{Store: s, now: utcNow}
}

// Seed inserts the document table by table. Invalid entries and events whose
// (date, title) already exists are skipped.
func (s *SeedService) Seed(ctx context.Context, seed *SeedData) (*SeedReport, error) {
	report := &SeedReport{Tables: map[string]*TableSeedResult{}}
	now := s.now()

	if len(seed.Events) > 0 {
		keys, err := s.Store.EventKeys(ctx)
		if err != nil {
			return nil, err
		}
		res := &TableSeedResult{}
		var records []models.Record
		for _, in := range seed.Events {
			if err := in.ValidateCreate(); err != nil {
				slog.Warn("Skipping seed event", "error", err)
				res.Skipped++
				continue
			}
			key := models.Event{Date: *in.Date, Title: *in.Title}.DedupeKey()
			if keys[key] {
				res.Skipped++
				continue
			}
			keys[key] = true
			records = append(records, in.Record(true, now))
		}
		if err := s.insert(ctx, "events", records, res); err != nil {
			return nil, err
		}
		report.Tables["events"] = res
	}

	if len(seed.Team) > 0 {
		res := &TableSeedResult{}
		var records []models.Record
		for _, in := range seed.Team {
			if err := in.ValidateCreate(); err != nil {
				slog.Warn("Skipping seed team member", "error", err)
				res.Skipped++
				continue
			}
			records = append(records, in.Record(true, now))
		}
		if err := s.insert(ctx, "team_members", records, res); err != nil {
			return nil, err
		}
		report.Tables["team_members"] = res
	}

	if len(seed.History) > 0 {
		res := &TableSeedResult{}
		var records []models.Record
		for _, in := range seed.History {
			if err := in.Validate(); err != nil {
				slog.Warn("Skipping seed content", "error", err)
				res.Skipped++
				continue
			}
			records = append(records, in.Record(now))
		}
		if err := s.insert(ctx, "historical_content", records, res); err != nil {
			return nil, err
		}
		report.Tables["historical_content"] = res
	}

	for table, res := range report.Tables {
		slog.Info("Seeded table", "table", table, "inserted", res.Inserted, "skipped", res.Skipped, "dropped", res.Dropped)
	}
	return report, nil
}

func (s *SeedService) insert(ctx context.Context, table string, records []models.Record, res *TableSeedResult) error {
	if len(records) == 0 {
		return nil
	}
	result, err := s.Store.InsertMany(ctx, table, records, false)
	if err != nil {
		return fmt.Errorf("seed %s: %w", table, err)
	}
	res.Inserted = len(records)
	res.Dropped = result.Dropped
	return nil
}
