// Package recurring contains the recurring transaction materialization engine.
package recurring

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/finflow/recurring-engine/internal/application/adapter"
	"github.com/finflow/recurring-engine/internal/domain/entity"
	domainerror "github.com/finflow/recurring-engine/internal/domain/error"
)

const lockKeyPrefix = "recurring:lock:"

// ProcessRecurringInput represents the input for a materialization run.
type ProcessRecurringInput struct {
	// Now is the reference time for the run. The scheduler passes
	// time.Now().UTC(); tests pass fixed dates.
	Now time.Time
}

// ProcessRecurringOutput represents the output of a materialization run.
type ProcessRecurringOutput struct {
	// Processed is the number of transactions actually created across all
	// templates.
	Processed int
}

// ProcessRecurringUseCase materializes concrete transactions from recurring
// templates: one transaction per template per elapsed calendar month, skipping
// months already materialized and never creating future-dated transactions.
type ProcessRecurringUseCase struct {
	templateRepo    adapter.RecurringTemplateRepository
	transactionRepo adapter.TransactionRepository
	accountRepo     adapter.AccountRepository
	locker          adapter.RunLocker
	lockTTL         time.Duration
}

// NewProcessRecurringUseCase creates a new ProcessRecurringUseCase instance.
// The locker may be nil, in which case no advisory locking is performed and
// the storage-level unique constraint is the only duplicate guard.
func NewProcessRecurringUseCase(
	templateRepo adapter.RecurringTemplateRepository,
	transactionRepo adapter.TransactionRepository,
	accountRepo adapter.AccountRepository,
	locker adapter.RunLocker,
	lockTTL time.Duration,
) *ProcessRecurringUseCase {
	return &ProcessRecurringUseCase{
		templateRepo:    templateRepo,
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		locker:          locker,
		lockTTL:         lockTTL,
	}
}

// Execute performs one materialization run. Per-template failures are logged
// and isolated; only a failure of the eligibility query itself aborts the run.
func (uc *ProcessRecurringUseCase) Execute(ctx context.Context, input ProcessRecurringInput) (*ProcessRecurringOutput, error) {
	templates, err := uc.templateRepo.SelectEligible(ctx, input.Now)
	if err != nil {
		return nil, domainerror.NewRecurringError(
			domainerror.ErrCodeEligibilityQueryFailed,
			"failed to select eligible templates",
			err,
		)
	}

	slog.Info("Starting recurring materialization run",
		"now", input.Now,
		"candidates", len(templates),
	)

	totalCreated := 0
	for _, template := range templates {
		created := uc.processTemplateLocked(ctx, template, input.Now)
		totalCreated += created
	}

	slog.Info("Recurring materialization run finished", "processed", totalCreated)

	return &ProcessRecurringOutput{Processed: totalCreated}, nil
}

// processTemplateLocked wraps per-template processing with the advisory lock
// and the error isolation boundary.
func (uc *ProcessRecurringUseCase) processTemplateLocked(ctx context.Context, template *entity.RecurringTemplate, now time.Time) int {
	logger := slog.With("template_id", template.ID, "user_id", template.UserID)

	if uc.locker != nil {
		key := lockKeyPrefix + template.ID.String()

		acquired, err := uc.locker.Acquire(ctx, key, uc.lockTTL)
		if err != nil {
			// The unique constraint still guards duplicates, so a lock
			// backend failure degrades rather than halts.
			logger.Warn("Advisory lock unavailable, proceeding without it", "error", err)
		} else if !acquired {
			logger.Info("Template locked by another run, skipping")
			return 0
		} else {
			defer func() {
				if err := uc.locker.Release(ctx, key); err != nil {
					logger.Warn("Failed to release advisory lock", "error", err)
				}
			}()
		}
	}

	created, err := uc.processTemplate(ctx, template, now)
	if err != nil {
		logger.Error("Failed to process recurring template", "error", err)
	}
	return created
}

// processTemplate materializes every due month for one template. It returns
// the number of transactions created, which is valid even when an error is
// returned: transactions created before the failure stay created, and the
// unchanged watermark makes the remaining months due again on the next run.
func (uc *ProcessRecurringUseCase) processTemplate(ctx context.Context, template *entity.RecurringTemplate, now time.Time) (int, error) {
	logger := slog.With("template_id", template.ID)

	months, err := uc.dueMonths(ctx, template, now)
	if err != nil {
		return 0, err
	}

	created := 0
	var watermark *time.Time

	for _, month := range months {
		existing, err := uc.transactionRepo.FindMaterialized(
			ctx, template.ID, template.AccountID, template.UserID, month.Month, month.Year,
		)
		if err != nil && !errors.Is(err, domainerror.ErrTransactionNotFound) {
			return created, err
		}

		if existing != nil {
			if existing.Date.After(now) {
				// Pre-existing data-quality anomaly: never adopt a future
				// date as watermark, but keep scanning later months.
				logger.Warn("Existing materialized transaction is future-dated",
					"transaction_id", existing.ID,
					"date", existing.Date,
				)
			} else {
				watermark = &existing.Date
			}
			continue
		}

		targetDate := month.DateForDay(template.DayOfMonth)

		// Due months are chronological, so once the target date passes now
		// every later month is future as well.
		if targetDate.After(now) {
			break
		}
		if template.EndDate != nil && targetDate.After(*template.EndDate) {
			break
		}

		transaction := entity.NewTransaction(template, targetDate)
		if err := uc.transactionRepo.Create(ctx, transaction); err != nil {
			if errors.Is(err, domainerror.ErrTransactionAlreadyMaterialized) {
				// Lost a race with a concurrent run; the month is covered.
				logger.Info("Month already materialized by concurrent run",
					"month", month.Month, "year", month.Year,
				)
				watermark = &targetDate
				continue
			}
			return created, err
		}

		if err := uc.accountRepo.IncrementBalance(ctx, template.AccountID, template.UserID, transaction.Amount); err != nil {
			return created + 1, err
		}

		watermark = &targetDate
		created++

		logger.Debug("Materialized recurring transaction",
			"transaction_id", transaction.ID,
			"date", targetDate,
			"amount", transaction.Amount,
		)
	}

	if watermark != nil {
		if watermark.After(now) {
			logger.Warn("Skipping watermark commit, candidate is in the future",
				"candidate", *watermark,
			)
			return created, nil
		}
		if err := uc.templateRepo.SetWatermark(ctx, template.ID, *watermark); err != nil {
			return created, err
		}
	}

	return created, nil
}
