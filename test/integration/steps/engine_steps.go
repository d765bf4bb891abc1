package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/finflow/recurring-engine/internal/application/usecase/recurring"
	"github.com/finflow/recurring-engine/internal/domain/entity"
)

// registerEngineSteps registers materialization engine steps.
func registerEngineSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^I have an account named "([^"]*)" with balance (-?[\d.]+)$`, iHaveAnAccountWithBalance)
	ctx.Step(`^I have an active expense template for "([^"]*)" charging ([\d.]+) on day (\d+) starting "([^"]*)"$`, iHaveAnActiveExpenseTemplate)
	ctx.Step(`^I have an active income template for "([^"]*)" paying ([\d.]+) on day (\d+) starting "([^"]*)"$`, iHaveAnActiveIncomeTemplate)
	ctx.Step(`^the template for "([^"]*)" ends on "([^"]*)"$`, theTemplateEndsOn)
	ctx.Step(`^the template for "([^"]*)" was last processed on "([^"]*)"$`, theTemplateWasLastProcessedOn)
	ctx.Step(`^a materialization run executes at "([^"]*)"$`, aMaterializationRunExecutesAt)
	ctx.Step(`^the run should create (\d+) transactions?$`, theRunShouldCreateTransactions)
	ctx.Step(`^a transaction for "([^"]*)" should exist dated "([^"]*)"$`, aTransactionShouldExistDated)
	ctx.Step(`^the account balance should be (-?[\d.]+)$`, theAccountBalanceShouldBe)
	ctx.Step(`^the watermark for "([^"]*)" should be "([^"]*)"$`, theWatermarkShouldBe)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t.UTC(), nil
}

func iHaveAnAccountWithBalance(ctx context.Context, name, balance string) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}

	amount, err := mustDecimal(balance)
	if err != nil {
		return ctx, err
	}

	account := entity.NewAccount(tc.userID, name, amount)
	if err := tc.accountRepo.Create(ctx, account); err != nil {
		return ctx, fmt.Errorf("failed to create account: %w", err)
	}
	tc.accountID = account.ID
	return SetTestContext(ctx, tc), nil
}

func (tc *TestContext) createTemplate(ctx context.Context, merchant, amount string, day int, start string, isExpense bool) error {
	charge, err := mustDecimal(amount)
	if err != nil {
		return err
	}
	startDate, err := parseDate(start)
	if err != nil {
		return err
	}

	tmpl := entity.NewRecurringTemplate(
		tc.userID,
		tc.accountID,
		merchant,
		merchant+" subscription",
		"",
		nil,
		charge,
		isExpense,
		day,
		startDate,
		nil,
	)
	if err := tc.templateRepo.Create(ctx, tmpl); err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	tc.templates[merchant] = tmpl
	return nil
}

func iHaveAnActiveExpenseTemplate(ctx context.Context, merchant, amount string, day int, start string) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}
	if err := tc.createTemplate(ctx, merchant, amount, day, start, true); err != nil {
		return ctx, err
	}
	return SetTestContext(ctx, tc), nil
}

func iHaveAnActiveIncomeTemplate(ctx context.Context, merchant, amount string, day int, start string) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}
	if err := tc.createTemplate(ctx, merchant, amount, day, start, false); err != nil {
		return ctx, err
	}
	return SetTestContext(ctx, tc), nil
}

func theTemplateEndsOn(ctx context.Context, merchant, end string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	tmpl, ok := tc.templates[merchant]
	if !ok {
		return fmt.Errorf("no template for merchant %q", merchant)
	}

	endDate, err := parseDate(end)
	if err != nil {
		return err
	}
	tmpl.EndDate = &endDate
	return tc.templateRepo.Update(ctx, tmpl)
}

func theTemplateWasLastProcessedOn(ctx context.Context, merchant, date string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	tmpl, ok := tc.templates[merchant]
	if !ok {
		return fmt.Errorf("no template for merchant %q", merchant)
	}

	watermark, err := parseDate(date)
	if err != nil {
		return err
	}
	return tc.templateRepo.SetWatermark(ctx, tmpl.ID, watermark)
}

func aMaterializationRunExecutesAt(ctx context.Context, at string) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}

	now, err := parseDate(at)
	if err != nil {
		return ctx, err
	}

	tc.lastRunOutput, tc.lastRunErr = tc.processUseCase.Execute(ctx, recurring.ProcessRecurringInput{Now: now})
	return SetTestContext(ctx, tc), nil
}

func theRunShouldCreateTransactions(ctx context.Context, expected int) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if tc.lastRunErr != nil {
		return fmt.Errorf("materialization run failed: %w", tc.lastRunErr)
	}
	if tc.lastRunOutput == nil {
		return fmt.Errorf("no materialization run was executed")
	}
	if tc.lastRunOutput.Processed != expected {
		return fmt.Errorf("expected %d created transactions, got %d", expected, tc.lastRunOutput.Processed)
	}
	return nil
}

func aTransactionShouldExistDated(ctx context.Context, merchant, date string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	tmpl, ok := tc.templates[merchant]
	if !ok {
		return fmt.Errorf("no template for merchant %q", merchant)
	}

	expected, err := parseDate(date)
	if err != nil {
		return err
	}

	txn, err := tc.transactionRepo.FindMaterialized(
		ctx, tmpl.ID, tmpl.AccountID, tmpl.UserID, expected.Month(), expected.Year(),
	)
	if err != nil {
		return fmt.Errorf("no transaction materialized for %s in %d-%02d: %w",
			merchant, expected.Year(), int(expected.Month()), err)
	}

	if !txn.Date.Equal(expected) {
		return fmt.Errorf("expected transaction dated %s, got %s",
			expected.Format("2006-01-02"), txn.Date.Format("2006-01-02"))
	}
	return nil
}

func theAccountBalanceShouldBe(ctx context.Context, expected string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	want, err := mustDecimal(expected)
	if err != nil {
		return err
	}

	account, err := tc.accountRepo.FindByID(ctx, tc.accountID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}

	if !account.Balance.Equal(want) {
		return fmt.Errorf("expected balance %s, got %s", want, account.Balance)
	}
	return nil
}

func theWatermarkShouldBe(ctx context.Context, merchant, date string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	tmpl, ok := tc.templates[merchant]
	if !ok {
		return fmt.Errorf("no template for merchant %q", merchant)
	}

	expected, err := parseDate(date)
	if err != nil {
		return err
	}

	reloaded, err := tc.templateRepo.FindByID(ctx, tmpl.ID)
	if err != nil {
		return fmt.Errorf("failed to reload template: %w", err)
	}
	if reloaded.LastProcessed == nil {
		return fmt.Errorf("expected watermark %s, got none", expected.Format("2006-01-02"))
	}
	if !reloaded.LastProcessed.Equal(expected) {
		return fmt.Errorf("expected watermark %s, got %s",
			expected.Format("2006-01-02"), reloaded.LastProcessed.Format("2006-01-02"))
	}
	return nil
}
