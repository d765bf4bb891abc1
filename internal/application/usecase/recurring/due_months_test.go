// Package recurring contains the recurring transaction materialization engine.
package recurring

import (
	"context"
	"testing"
	"time"

	"github.com/finflow/recurring-engine/internal/domain/valueobject"
)

func enumerate(t *testing.T, templates *fakeTemplateRepo, now time.Time) []valueobject.DueMonth {
	t.Helper()

	engine := newEngine(templates, newFakeTransactionRepo(), newFakeAccountRepo())
	months, err := engine.dueMonths(context.Background(), templates.templates[0], now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return months
}

func TestDueMonths(t *testing.T) {
	t.Run("starts the month after the watermark", func(t *testing.T) {
		template := testTemplate(15, date(2024, time.January, 15))
		lastProcessed := date(2024, time.March, 15)
		template.LastProcessed = &lastProcessed

		months := enumerate(t, newFakeTemplateRepo(template), date(2024, time.June, 20))

		want := []valueobject.DueMonth{
			{Month: time.April, Year: 2024},
			{Month: time.May, Year: 2024},
			{Month: time.June, Year: 2024},
		}
		if len(months) != len(want) {
			t.Fatalf("expected %d months, got %d", len(want), len(months))
		}
		for i, m := range months {
			if m != want[i] {
				t.Errorf("month %d: expected %v, got %v", i, want[i], m)
			}
		}
	})

	t.Run("december rolls into january", func(t *testing.T) {
		template := testTemplate(1, date(2023, time.January, 1))
		lastProcessed := date(2023, time.November, 1)
		template.LastProcessed = &lastProcessed

		months := enumerate(t, newFakeTemplateRepo(template), date(2024, time.February, 10))

		want := []valueobject.DueMonth{
			{Month: time.December, Year: 2023},
			{Month: time.January, Year: 2024},
			{Month: time.February, Year: 2024},
		}
		if len(months) != len(want) {
			t.Fatalf("expected %d months, got %d", len(want), len(months))
		}
		for i, m := range months {
			if m != want[i] {
				t.Errorf("month %d: expected %v, got %v", i, want[i], m)
			}
		}
	})

	t.Run("empty when the watermark is in the current month", func(t *testing.T) {
		template := testTemplate(5, date(2024, time.January, 5))
		lastProcessed := date(2024, time.June, 5)
		template.LastProcessed = &lastProcessed

		months := enumerate(t, newFakeTemplateRepo(template), date(2024, time.June, 25))
		if len(months) != 0 {
			t.Errorf("expected no due months, got %d", len(months))
		}
	})

	t.Run("future start date is clamped to now", func(t *testing.T) {
		template := testTemplate(5, date(2025, time.March, 5))

		months := enumerate(t, newFakeTemplateRepo(template), date(2024, time.June, 25))
		if len(months) != 0 {
			t.Errorf("expected no due months for a future start, got %d", len(months))
		}
	})

	t.Run("future watermark is cleared and start date reused", func(t *testing.T) {
		template := testTemplate(5, date(2024, time.February, 5))
		corrupt := date(2024, time.December, 5)
		template.LastProcessed = &corrupt

		templates := newFakeTemplateRepo(template)
		months := enumerate(t, templates, date(2024, time.May, 25))

		if len(templates.cleared) != 1 {
			t.Error("expected ClearWatermark to be called once")
		}
		want := []valueobject.DueMonth{
			{Month: time.March, Year: 2024},
			{Month: time.April, Year: 2024},
			{Month: time.May, Year: 2024},
		}
		if len(months) != len(want) {
			t.Fatalf("expected %d months, got %d", len(want), len(months))
		}
		for i, m := range months {
			if m != want[i] {
				t.Errorf("month %d: expected %v, got %v", i, want[i], m)
			}
		}
	})
}

func TestDueMonthHelpers(t *testing.T) {
	t.Run("LastDay handles leap years", func(t *testing.T) {
		cases := []struct {
			month valueobject.DueMonth
			want  int
		}{
			{valueobject.DueMonth{Month: time.February, Year: 2023}, 28},
			{valueobject.DueMonth{Month: time.February, Year: 2024}, 29},
			{valueobject.DueMonth{Month: time.April, Year: 2024}, 30},
			{valueobject.DueMonth{Month: time.December, Year: 2024}, 31},
		}
		for _, c := range cases {
			if got := c.month.LastDay(); got != c.want {
				t.Errorf("LastDay(%v %d): expected %d, got %d", c.month.Month, c.month.Year, c.want, got)
			}
		}
	})

	t.Run("DateForDay clamps to month length", func(t *testing.T) {
		m := valueobject.DueMonth{Month: time.February, Year: 2023}
		if got := m.DateForDay(31); got.Day() != 28 {
			t.Errorf("expected day 28, got %d", got.Day())
		}
		if got := m.DateForDay(10); got.Day() != 10 {
			t.Errorf("expected day 10, got %d", got.Day())
		}
	})
}
