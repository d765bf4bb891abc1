// Package recurring contains the recurring transaction materialization engine.
package recurring

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finflow/recurring-engine/internal/domain/entity"
	domainerror "github.com/finflow/recurring-engine/internal/domain/error"
)

// fakeTemplateRepo is an in-memory RecurringTemplateRepository for engine tests.
type fakeTemplateRepo struct {
	templates  []*entity.RecurringTemplate
	selectErr  error
	cleared    []uuid.UUID
	watermarks map[uuid.UUID]time.Time
}

func newFakeTemplateRepo(templates ...*entity.RecurringTemplate) *fakeTemplateRepo {
	return &fakeTemplateRepo{
		templates:  templates,
		watermarks: make(map[uuid.UUID]time.Time),
	}
}

func (r *fakeTemplateRepo) Create(_ context.Context, template *entity.RecurringTemplate) error {
	r.templates = append(r.templates, template)
	return nil
}

func (r *fakeTemplateRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.RecurringTemplate, error) {
	for _, t := range r.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, domainerror.ErrTemplateNotFound
}

func (r *fakeTemplateRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]*entity.RecurringTemplate, error) {
	var out []*entity.RecurringTemplate
	for _, t := range r.templates {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTemplateRepo) SelectEligible(_ context.Context, _ time.Time) ([]*entity.RecurringTemplate, error) {
	if r.selectErr != nil {
		return nil, r.selectErr
	}
	return r.templates, nil
}

func (r *fakeTemplateRepo) SetWatermark(_ context.Context, id uuid.UUID, date time.Time) error {
	r.watermarks[id] = date
	for _, t := range r.templates {
		if t.ID == id {
			d := date
			t.LastProcessed = &d
		}
	}
	return nil
}

func (r *fakeTemplateRepo) ClearWatermark(_ context.Context, id uuid.UUID) error {
	r.cleared = append(r.cleared, id)
	for _, t := range r.templates {
		if t.ID == id {
			t.LastProcessed = nil
		}
	}
	return nil
}

func (r *fakeTemplateRepo) Update(_ context.Context, _ *entity.RecurringTemplate) error { return nil }
func (r *fakeTemplateRepo) Delete(_ context.Context, _ uuid.UUID) error                 { return nil }

// fakeTransactionRepo stores transactions keyed by (template, year, month) and
// enforces the composite uniqueness the real store guarantees with an index.
type fakeTransactionRepo struct {
	byMonth map[string]*entity.Transaction
	// createErrAfter makes Create fail once the given number of inserts for
	// the matching template succeeded; used for isolation tests.
	failTemplateID uuid.UUID
	createErrAfter int
	createdFor     map[uuid.UUID]int
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{
		byMonth:        make(map[string]*entity.Transaction),
		createErrAfter: -1,
		createdFor:     make(map[uuid.UUID]int),
	}
}

func monthKey(templateID uuid.UUID, month time.Month, year int) string {
	return fmt.Sprintf("%s/%d-%d", templateID, year, month)
}

func (r *fakeTransactionRepo) Create(_ context.Context, transaction *entity.Transaction) error {
	if transaction.RecurringTemplateID == r.failTemplateID &&
		r.createErrAfter >= 0 &&
		r.createdFor[transaction.RecurringTemplateID] >= r.createErrAfter {
		return errors.New("insert failed")
	}

	key := monthKey(transaction.RecurringTemplateID, transaction.RecurrenceMonth, transaction.RecurrenceYear)
	if _, exists := r.byMonth[key]; exists {
		return domainerror.ErrTransactionAlreadyMaterialized
	}
	r.byMonth[key] = transaction
	r.createdFor[transaction.RecurringTemplateID]++
	return nil
}

func (r *fakeTransactionRepo) FindMaterialized(
	_ context.Context,
	templateID uuid.UUID,
	_ uuid.UUID,
	_ uuid.UUID,
	month time.Month,
	year int,
) (*entity.Transaction, error) {
	if tx, ok := r.byMonth[monthKey(templateID, month, year)]; ok {
		return tx, nil
	}
	return nil, domainerror.ErrTransactionNotFound
}

func (r *fakeTransactionRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]*entity.Transaction, error) {
	var out []*entity.Transaction
	for _, tx := range r.byMonth {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) dates(templateID uuid.UUID) []time.Time {
	var out []time.Time
	for _, tx := range r.byMonth {
		if tx.RecurringTemplateID == templateID {
			out = append(out, tx.Date)
		}
	}
	return out
}

// fakeAccountRepo tracks balance deltas per account.
type fakeAccountRepo struct {
	balances map[uuid.UUID]decimal.Decimal
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{balances: make(map[uuid.UUID]decimal.Decimal)}
}

func (r *fakeAccountRepo) Create(_ context.Context, _ *entity.Account) error { return nil }

func (r *fakeAccountRepo) FindByID(_ context.Context, _ uuid.UUID) (*entity.Account, error) {
	return nil, domainerror.ErrAccountNotFound
}

func (r *fakeAccountRepo) FindByUser(_ context.Context, _ uuid.UUID) ([]*entity.Account, error) {
	return nil, nil
}

func (r *fakeAccountRepo) IncrementBalance(_ context.Context, accountID uuid.UUID, _ uuid.UUID, delta decimal.Decimal) error {
	r.balances[accountID] = r.balances[accountID].Add(delta)
	return nil
}

// fakeLocker denies the lock for the listed keys.
type fakeLocker struct {
	denied map[string]bool
}

func (l *fakeLocker) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	return !l.denied[key], nil
}

func (l *fakeLocker) Release(_ context.Context, _ string) error { return nil }

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func testTemplate(dayOfMonth int, startDate time.Time) *entity.RecurringTemplate {
	return entity.NewRecurringTemplate(
		uuid.New(),
		uuid.New(),
		"Acme Gym",
		"Monthly membership",
		"Health",
		nil,
		decimal.NewFromFloat(49.90),
		true,
		dayOfMonth,
		startDate,
		nil,
	)
}

func newEngine(templates *fakeTemplateRepo, transactions *fakeTransactionRepo, accounts *fakeAccountRepo) *ProcessRecurringUseCase {
	return NewProcessRecurringUseCase(templates, transactions, accounts, nil, 0)
}

func TestProcessRecurring_Backfill(t *testing.T) {
	// Watermark three months back, target day 15, run on day 20: exactly the
	// three intervening months are materialized, up to and including current.
	template := testTemplate(15, date(2024, time.January, 15))
	lastProcessed := date(2024, time.March, 15)
	template.LastProcessed = &lastProcessed

	templates := newFakeTemplateRepo(template)
	transactions := newFakeTransactionRepo()
	accounts := newFakeAccountRepo()

	out, err := newEngine(templates, transactions, accounts).Execute(
		context.Background(),
		ProcessRecurringInput{Now: date(2024, time.June, 20)},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Processed != 3 {
		t.Fatalf("expected 3 transactions, got %d", out.Processed)
	}

	for _, want := range []time.Time{
		date(2024, time.April, 15),
		date(2024, time.May, 15),
		date(2024, time.June, 15),
	} {
		if _, err := transactions.FindMaterialized(
			context.Background(), template.ID, template.AccountID, template.UserID, want.Month(), want.Year(),
		); err != nil {
			t.Errorf("expected transaction for %s", want.Format("2006-01"))
		}
	}

	if got := templates.watermarks[template.ID]; !got.Equal(date(2024, time.June, 15)) {
		t.Errorf("expected watermark 2024-06-15, got %s", got)
	}
}

func TestProcessRecurring_Idempotency(t *testing.T) {
	template := testTemplate(10, date(2024, time.January, 10))
	templates := newFakeTemplateRepo(template)
	transactions := newFakeTransactionRepo()
	accounts := newFakeAccountRepo()

	engine := newEngine(templates, transactions, accounts)
	now := date(2024, time.April, 12)

	first, err := engine.Execute(context.Background(), ProcessRecurringInput{Now: now})
	if err != nil {
		t.Fatalf("unexpected error on first run: %v", err)
	}
	if first.Processed != 3 {
		t.Fatalf("expected 3 transactions on first run, got %d", first.Processed)
	}

	second, err := engine.Execute(context.Background(), ProcessRecurringInput{Now: now})
	if err != nil {
		t.Fatalf("unexpected error on second run: %v", err)
	}
	if second.Processed != 0 {
		t.Errorf("expected 0 transactions on immediate second run, got %d", second.Processed)
	}
}

func TestProcessRecurring_DayClamping(t *testing.T) {
	// Day 31 in February of a non-leap year lands on the 28th.
	template := testTemplate(31, date(2023, time.January, 31))
	templates := newFakeTemplateRepo(template)
	transactions := newFakeTransactionRepo()

	out, err := newEngine(templates, transactions, newFakeAccountRepo()).Execute(
		context.Background(),
		ProcessRecurringInput{Now: date(2023, time.March, 1)},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Processed != 1 {
		t.Fatalf("expected 1 transaction, got %d", out.Processed)
	}

	tx, err := transactions.FindMaterialized(
		context.Background(), template.ID, template.AccountID, template.UserID, time.February, 2023,
	)
	if err != nil {
		t.Fatal("expected a February transaction")
	}
	if !tx.Date.Equal(date(2023, time.February, 28)) {
		t.Errorf("expected date 2023-02-28, got %s", tx.Date)
	}
}

func TestProcessRecurring_NoFutureDates(t *testing.T) {
	t.Run("start date next month yields nothing", func(t *testing.T) {
		template := testTemplate(5, date(2024, time.July, 5))
		templates := newFakeTemplateRepo(template)
		transactions := newFakeTransactionRepo()

		out, err := newEngine(templates, transactions, newFakeAccountRepo()).Execute(
			context.Background(),
			ProcessRecurringInput{Now: date(2024, time.June, 20)},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Processed != 0 {
			t.Errorf("expected 0 transactions, got %d", out.Processed)
		}
		if len(transactions.byMonth) != 0 {
			t.Errorf("expected no stored transactions, got %d", len(transactions.byMonth))
		}
	})

	t.Run("current month skipped when target day has not arrived", func(t *testing.T) {
		template := testTemplate(25, date(2024, time.April, 25))
		lastProcessed := date(2024, time.May, 25)
		template.LastProcessed = &lastProcessed

		templates := newFakeTemplateRepo(template)
		transactions := newFakeTransactionRepo()

		out, err := newEngine(templates, transactions, newFakeAccountRepo()).Execute(
			context.Background(),
			ProcessRecurringInput{Now: date(2024, time.June, 10)},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Processed != 0 {
			t.Errorf("expected 0 transactions before the target day, got %d", out.Processed)
		}
	})
}

func TestProcessRecurring_EndDateHalt(t *testing.T) {
	template := testTemplate(10, date(2024, time.January, 10))
	endDate := date(2024, time.March, 31)
	template.EndDate = &endDate

	templates := newFakeTemplateRepo(template)
	transactions := newFakeTransactionRepo()

	out, err := newEngine(templates, transactions, newFakeAccountRepo()).Execute(
		context.Background(),
		ProcessRecurringInput{Now: date(2024, time.June, 20)},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// February and March are due; April exceeds the end date and halts the loop.
	if out.Processed != 2 {
		t.Fatalf("expected 2 transactions, got %d", out.Processed)
	}
	for _, d := range transactions.dates(template.ID) {
		if d.After(endDate) {
			t.Errorf("transaction dated %s exceeds end date %s", d, endDate)
		}
	}
}

func TestProcessRecurring_FutureWatermarkSelfHeal(t *testing.T) {
	template := testTemplate(10, date(2024, time.March, 10))
	corrupt := date(2025, time.January, 10)
	template.LastProcessed = &corrupt

	templates := newFakeTemplateRepo(template)
	transactions := newFakeTransactionRepo()

	out, err := newEngine(templates, transactions, newFakeAccountRepo()).Execute(
		context.Background(),
		ProcessRecurringInput{Now: date(2024, time.June, 20)},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(templates.cleared) != 1 || templates.cleared[0] != template.ID {
		t.Error("expected the corrupt watermark to be cleared")
	}

	// Reprocessed from start_date forward, bounded at now: April, May, June.
	if out.Processed != 3 {
		t.Errorf("expected 3 transactions after self-heal, got %d", out.Processed)
	}
	for _, d := range transactions.dates(template.ID) {
		if d.After(date(2024, time.June, 20)) {
			t.Errorf("transaction dated %s is in the future", d)
		}
	}
}

func TestProcessRecurring_Isolation(t *testing.T) {
	// Template A fails mid-loop; template B still completes and contributes.
	templateA := testTemplate(10, date(2024, time.January, 10))
	templateB := testTemplate(10, date(2024, time.January, 10))

	templates := newFakeTemplateRepo(templateA, templateB)
	transactions := newFakeTransactionRepo()
	transactions.failTemplateID = templateA.ID
	transactions.createErrAfter = 1

	out, err := newEngine(templates, transactions, newFakeAccountRepo()).Execute(
		context.Background(),
		ProcessRecurringInput{Now: date(2024, time.April, 15)},
	)
	if err != nil {
		t.Fatalf("run must not fail on a per-template error: %v", err)
	}

	// A created one of its three due months before failing; B created all three.
	if got := transactions.createdFor[templateB.ID]; got != 3 {
		t.Errorf("expected template B to materialize 3 transactions, got %d", got)
	}
	if out.Processed != 4 {
		t.Errorf("expected 4 transactions overall, got %d", out.Processed)
	}
}

func TestProcessRecurring_EligibilityFailureAborts(t *testing.T) {
	templates := newFakeTemplateRepo()
	templates.selectErr = errors.New("connection refused")

	_, err := newEngine(templates, newFakeTransactionRepo(), newFakeAccountRepo()).Execute(
		context.Background(),
		ProcessRecurringInput{Now: date(2024, time.June, 20)},
	)
	if err == nil {
		t.Fatal("expected the run to fail when the eligibility query fails")
	}

	var recurringErr *domainerror.RecurringError
	if !errors.As(err, &recurringErr) || recurringErr.Code != domainerror.ErrCodeEligibilityQueryFailed {
		t.Errorf("expected eligibility query error code, got %v", err)
	}
}

func TestProcessRecurring_BalanceDelta(t *testing.T) {
	template := testTemplate(10, date(2024, time.March, 10))
	template.Amount = decimal.NewFromInt(100)
	template.IsExpense = true

	templates := newFakeTemplateRepo(template)
	accounts := newFakeAccountRepo()

	out, err := newEngine(templates, newFakeTransactionRepo(), accounts).Execute(
		context.Background(),
		ProcessRecurringInput{Now: date(2024, time.May, 15)},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Processed != 2 {
		t.Fatalf("expected 2 transactions, got %d", out.Processed)
	}

	want := decimal.NewFromInt(-200)
	if got := accounts.balances[template.AccountID]; !got.Equal(want) {
		t.Errorf("expected balance delta %s, got %s", want, got)
	}
}

func TestProcessRecurring_ExistingMonthAdoptedAsWatermark(t *testing.T) {
	template := testTemplate(10, date(2024, time.January, 10))
	templates := newFakeTemplateRepo(template)
	transactions := newFakeTransactionRepo()

	// February already materialized by an earlier run.
	existing := entity.NewTransaction(template, date(2024, time.February, 10))
	if err := transactions.Create(context.Background(), existing); err != nil {
		t.Fatalf("failed to seed existing transaction: %v", err)
	}

	out, err := newEngine(templates, transactions, newFakeAccountRepo()).Execute(
		context.Background(),
		ProcessRecurringInput{Now: date(2024, time.March, 15)},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only March is created; February is adopted without a duplicate.
	if out.Processed != 1 {
		t.Errorf("expected 1 transaction, got %d", out.Processed)
	}
	if got := templates.watermarks[template.ID]; !got.Equal(date(2024, time.March, 10)) {
		t.Errorf("expected watermark 2024-03-10, got %s", got)
	}
}

func TestProcessRecurring_FutureDatedExistingNotAdopted(t *testing.T) {
	template := testTemplate(10, date(2024, time.January, 10))
	templates := newFakeTemplateRepo(template)
	transactions := newFakeTransactionRepo()

	// Anomalous pre-existing row: February's transaction dated in the future.
	anomalous := entity.NewTransaction(template, date(2024, time.February, 10))
	anomalous.Date = date(2025, time.December, 10)
	if err := transactions.Create(context.Background(), anomalous); err != nil {
		t.Fatalf("failed to seed anomalous transaction: %v", err)
	}

	out, err := newEngine(templates, transactions, newFakeAccountRepo()).Execute(
		context.Background(),
		ProcessRecurringInput{Now: date(2024, time.March, 15)},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// March is still materialized and becomes the watermark; the anomalous
	// future date never does.
	if out.Processed != 1 {
		t.Errorf("expected 1 transaction, got %d", out.Processed)
	}
	if got := templates.watermarks[template.ID]; !got.Equal(date(2024, time.March, 10)) {
		t.Errorf("expected watermark 2024-03-10, got %s", got)
	}
}

func TestProcessRecurring_LockedTemplateSkipped(t *testing.T) {
	template := testTemplate(10, date(2024, time.January, 10))
	templates := newFakeTemplateRepo(template)
	transactions := newFakeTransactionRepo()

	locker := &fakeLocker{denied: map[string]bool{
		lockKeyPrefix + template.ID.String(): true,
	}}

	engine := NewProcessRecurringUseCase(templates, transactions, newFakeAccountRepo(), locker, time.Minute)
	out, err := engine.Execute(context.Background(), ProcessRecurringInput{Now: date(2024, time.April, 15)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Processed != 0 {
		t.Errorf("expected locked template to be skipped, got %d transactions", out.Processed)
	}
}
