package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/repository"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/testutil"
)

func TestRefreshRunRepository(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

	t.Run("round trip", func(t *testing.T) {
		repo := repository.NewRefreshRunRepository(testutil.SetupTestDB(t))
		run := model.RefreshRun{
			ID:           "run-1",
			Kind:         model.RefreshKindLoad,
			StartedAt:    base,
			FinishedAt:   base.Add(1500 * time.Millisecond),
			Succeeded:    6,
			Failed:       2,
			FallbackUsed: true,
			Committed:    true,
		}

		if err := repo.InsertRefreshRun(ctx, run); err != nil {
			t.Fatalf("InsertRefreshRun() returned unexpected error: %v", err)
		}
		runs, err := repo.ListRefreshRuns(ctx, 10)
		if err != nil {
			t.Fatalf("ListRefreshRuns() returned unexpected error: %v", err)
		}

		if len(runs) != 1 {
			t.Fatalf("Expected 1 run, got %d", len(runs))
		}
		got := runs[0]
		if got.ID != run.ID || got.Kind != run.Kind || got.Succeeded != 6 || got.Failed != 2 {
			t.Errorf("Unexpected run %+v", got)
		}
		if !got.FallbackUsed || !got.Committed {
			t.Errorf("Expected flags to round trip, got %+v", got)
		}
		if !got.StartedAt.Equal(run.StartedAt) || !got.FinishedAt.Equal(run.FinishedAt) {
			t.Errorf("Timestamps changed: %v %v", got.StartedAt, got.FinishedAt)
		}
	})

	t.Run("newest first with limit", func(t *testing.T) {
		repo := repository.NewRefreshRunRepository(testutil.SetupTestDB(t))
		for i := range 5 {
			// Sub-second offsets check that ordering does not depend on fraction width.
			started := base.Add(time.Duration(i) * 100 * time.Millisecond)
			if err := repo.InsertRefreshRun(ctx, model.RefreshRun{
				ID:         fmt.Sprintf("run-%d", i),
				Kind:       model.RefreshKindRefresh,
				StartedAt:  started,
				FinishedAt: started,
			}); err != nil {
				t.Fatalf("InsertRefreshRun() returned unexpected error: %v", err)
			}
		}

		runs, err := repo.ListRefreshRuns(ctx, 3)
		if err != nil {
			t.Fatalf("ListRefreshRuns() returned unexpected error: %v", err)
		}

		if len(runs) != 3 {
			t.Fatalf("Expected 3 runs, got %d", len(runs))
		}
		for i, want := range []string{"run-4", "run-3", "run-2"} {
			if runs[i].ID != want {
				t.Errorf("runs[%d] = %s, want %s", i, runs[i].ID, want)
			}
		}
	})

	t.Run("non-positive limit uses default", func(t *testing.T) {
		repo := repository.NewRefreshRunRepository(testutil.SetupTestDB(t))
		for i := range repository.DefaultRefreshRunLimit + 5 {
			if err := repo.InsertRefreshRun(ctx, model.RefreshRun{
				ID:         fmt.Sprintf("run-%d", i),
				Kind:       model.RefreshKindLoad,
				StartedAt:  base.Add(time.Duration(i) * time.Minute),
				FinishedAt: base,
			}); err != nil {
				t.Fatalf("InsertRefreshRun() returned unexpected error: %v", err)
			}
		}

		runs, err := repo.ListRefreshRuns(ctx, 0)
		if err != nil {
			t.Fatalf("ListRefreshRuns() returned unexpected error: %v", err)
		}
		if len(runs) != repository.DefaultRefreshRunLimit {
			t.Errorf("Expected %d runs, got %d", repository.DefaultRefreshRunLimit, len(runs))
		}
	})
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2024-06-10T08:00:00.500000000Z", time.Date(2024, 6, 10, 8, 0, 0, 500000000, time.UTC), false},
		{"2024-06-10T10:00:00+02:00", time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC), false},
		{"2024-06-10", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), false},
		{"yesterday", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := repository.ParseTime(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTime(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
