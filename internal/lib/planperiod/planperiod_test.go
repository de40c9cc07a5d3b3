package planperiod

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mobilka/subscription-portal/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEndDate(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		duration string
		want     time.Time
	}{
		{
			name:     "monthly mid month",
			start:    date(2024, time.January, 15),
			duration: models.DurationMonthly,
			want:     date(2024, time.February, 15),
		},
		{
			name:     "quarterly",
			start:    date(2024, time.January, 15),
			duration: models.DurationQuarterly,
			want:     date(2024, time.April, 15),
		},
		{
			name:     "yearly",
			start:    date(2024, time.January, 15),
			duration: models.DurationYearly,
			want:     date(2025, time.January, 15),
		},
		{
			name:     "monthly rolls over short month",
			start:    date(2024, time.January, 31),
			duration: models.DurationMonthly,
			want:     date(2024, time.March, 2),
		},
		{
			name:     "unknown duration falls back to monthly",
			start:    date(2024, time.June, 1),
			duration: "weekly",
			want:     date(2024, time.July, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EndDate(tt.start, tt.duration)
			assert.Equal(t, tt.want, got)
		})
	}
}
