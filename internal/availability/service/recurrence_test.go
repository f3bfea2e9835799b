package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostavail/internal/availability/domain"
	"hostavail/internal/availability/window"
)

func TestOccurrences(t *testing.T) {
	first := slot(10, 0, 11, 0)

	tests := []struct {
		name      string
		rule      *domain.RecurringRule
		wantCount int
		wantLast  time.Time
	}{
		{"no rule", nil, 1, first.Start()},
		{"single count", &domain.RecurringRule{Frequency: domain.Daily, Count: 1}, 1, first.Start()},
		{"daily", &domain.RecurringRule{Frequency: domain.Daily, Count: 5}, 5, first.Start().AddDate(0, 0, 4)},
		{"weekly", &domain.RecurringRule{Frequency: domain.Weekly, Count: 3}, 3, first.Start().AddDate(0, 0, 14)},
		{"monthly", &domain.RecurringRule{Frequency: domain.Monthly, Count: 2}, 2, first.Start().AddDate(0, 1, 0)},
		{"unknown frequency", &domain.RecurringRule{Frequency: "hourly", Count: 4}, 1, first.Start()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := occurrences(first, tt.rule, time.UTC)
			require.Len(t, got, tt.wantCount)
			assert.True(t, got[0].Equal(first))
			assert.True(t, tt.wantLast.Equal(got[len(got)-1].Start()))
			for _, w := range got {
				assert.Equal(t, 60, w.Minutes())
			}
		})
	}
}

func TestOccurrences_KeepWallClockAcrossDST(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	// 2024-03-29 is the Friday before clocks move forward in Berlin.
	start := time.Date(2024, 3, 29, 9, 0, 0, 0, berlin)
	first := window.MustNew(start, start.Add(time.Hour), "Europe/Berlin")

	got := occurrences(first, &domain.RecurringRule{Frequency: domain.Weekly, Count: 2}, berlin)

	require.Len(t, got, 2)
	assert.Equal(t, 9, got[1].Start().In(berlin).Hour())
	assert.Equal(t, 167*time.Hour, got[1].Start().Sub(got[0].Start()))
}
