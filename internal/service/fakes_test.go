package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yourusername/fplpanel/internal/datasource"
	"github.com/yourusername/fplpanel/internal/models"
)

type fakePanelRepo struct {
	mu      sync.Mutex
	records []models.PlayerRecord
	err     error
}

func (f *fakePanelRepo) UpsertRecords(ctx context.Context, records []models.PlayerRecord) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.records = append(f.records, records...)
	return len(records), nil
}

func (f *fakePanelRepo) GetBySeason(ctx context.Context, season int) ([]models.PlayerRecord, error) {
	var out []models.PlayerRecord
	for _, r := range f.records {
		if r.Season == season {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakePanelRepo) CountBySeason(ctx context.Context) (map[int]int, error) {
	counts := make(map[int]int)
	for _, r := range f.records {
		counts[r.Season]++
	}
	return counts, nil
}

type fakeRunRepo struct {
	mu   sync.Mutex
	runs map[uuid.UUID]models.PipelineRun
}

func newFakeRunRepo() *fakeRunRepo {
	return &fakeRunRepo{runs: make(map[uuid.UUID]models.PipelineRun)}
}

func (f *fakeRunRepo) Create(ctx context.Context, run *models.PipelineRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[run.ID] = *run
	return nil
}

func (f *fakeRunRepo) Update(ctx context.Context, run *models.PipelineRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.runs[run.ID]; !ok {
		return models.ErrNotFound
	}
	f.runs[run.ID] = *run
	return nil
}

func (f *fakeRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PipelineRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &run, nil
}

func (f *fakeRunRepo) GetLatest(ctx context.Context, kind string) (*models.PipelineRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.PipelineRun
	for _, run := range f.runs {
		run := run
		if run.Kind == kind && (latest == nil || run.StartedAt.After(latest.StartedAt)) {
			latest = &run
		}
	}
	if latest == nil {
		return nil, models.ErrNotFound
	}
	return latest, nil
}

func (f *fakeRunRepo) List(ctx context.Context, limit int) ([]*models.PipelineRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.PipelineRun
	for _, run := range f.runs {
		run := run
		out = append(out, &run)
	}
	return out, nil
}

type fakePlayerSource struct {
	bootstrap *datasource.Bootstrap
	fixtures  []datasource.Fixture
	history   map[int][]datasource.HistoryEntry
	failing   map[int]error
	calls     []int
}

func (f *fakePlayerSource) Name() string { return "fake" }

func (f *fakePlayerSource) FetchBootstrap(ctx context.Context) (*datasource.Bootstrap, error) {
	return f.bootstrap, nil
}

func (f *fakePlayerSource) FetchPlayerHistory(ctx context.Context, id int) ([]datasource.HistoryEntry, error) {
	f.calls = append(f.calls, id)
	if err := f.failing[id]; err != nil {
		return nil, err
	}
	return f.history[id], nil
}

func (f *fakePlayerSource) FetchFixtures(ctx context.Context) ([]datasource.Fixture, error) {
	return f.fixtures, nil
}
