// Package recurring contains the recurring transaction materialization engine.
package recurring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finflow/recurring-engine/internal/domain/entity"
	"github.com/finflow/recurring-engine/internal/domain/valueobject"
)

// dueMonths computes the ordered calendar months owed by a template, oldest
// first. The first due month is always the month after the watermark (that
// month was already handled, or is the start month with no prior obligation),
// and the sequence never extends past the month containing now.
//
// A watermark strictly in the future violates the template invariant; it is
// treated as corrupt, cleared in the store, and enumeration restarts from the
// template's start date.
func (uc *ProcessRecurringUseCase) dueMonths(
	ctx context.Context,
	template *entity.RecurringTemplate,
	now time.Time,
) ([]valueobject.DueMonth, error) {
	startDate := template.StartDate
	if template.LastProcessed != nil {
		startDate = *template.LastProcessed

		if startDate.After(now) {
			slog.Warn("Clearing future last-processed watermark",
				"template_id", template.ID,
				"last_processed", startDate,
			)
			if err := uc.templateRepo.ClearWatermark(ctx, template.ID); err != nil {
				return nil, fmt.Errorf("failed to clear corrupt watermark: %w", err)
			}
			template.LastProcessed = nil
			startDate = template.StartDate
		}
	}

	// A start date in the future (template scheduled to begin later) is
	// clamped to now so no future month is ever enumerated.
	if startDate.After(now) {
		startDate = now
	}

	current := valueobject.DueMonthOf(now)

	var months []valueobject.DueMonth
	for m := valueobject.DueMonthOf(startDate).Next(); !m.After(current); m = m.Next() {
		months = append(months, m)
	}

	return months, nil
}
