// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finflow/recurring-engine/internal/application/adapter"
	"github.com/finflow/recurring-engine/internal/application/usecase/account"
	"github.com/finflow/recurring-engine/internal/application/usecase/recurring"
	"github.com/finflow/recurring-engine/internal/application/usecase/template"
	"github.com/finflow/recurring-engine/internal/application/usecase/transaction"
	"github.com/finflow/recurring-engine/internal/domain/entity"
	"github.com/finflow/recurring-engine/internal/infra/server/router"
	"github.com/finflow/recurring-engine/internal/integration/adapters"
	"github.com/finflow/recurring-engine/internal/integration/entrypoint/controller"
	"github.com/finflow/recurring-engine/internal/integration/entrypoint/middleware"
	"github.com/finflow/recurring-engine/internal/integration/persistence"
	"github.com/finflow/recurring-engine/test/integration/mock"
)

const testJWTSecret = "test-jwt-secret-key-for-testing-purposes"

// TestContext holds the test state for each scenario.
type TestContext struct {
	// HTTP
	server       *httptest.Server
	response     *http.Response
	responseBody []byte

	// Request building
	requestHeaders map[string]string
	accessToken    string

	// Fixtures
	userID     uuid.UUID
	accountID  uuid.UUID
	templates  map[string]*entity.RecurringTemplate
	db         *mock.Db

	// Repositories and engine
	templateRepo    adapter.RecurringTemplateRepository
	transactionRepo adapter.TransactionRepository
	accountRepo     adapter.AccountRepository
	tokenService    adapter.TokenService
	processUseCase  *recurring.ProcessRecurringUseCase

	// Last materialization run
	lastRunOutput *recurring.ProcessRecurringOutput
	lastRunErr    error
}

// contextKey is used to store TestContext in context.Context.
type contextKey struct{}

// GetTestContext retrieves the TestContext from context.
func GetTestContext(ctx context.Context) *TestContext {
	if tc, ok := ctx.Value(contextKey{}).(*TestContext); ok {
		return tc
	}
	return nil
}

// SetTestContext stores the TestContext in context.
func SetTestContext(ctx context.Context, tc *TestContext) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// InitializeTestSuite sets up resources before any scenarios run.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		gin.SetMode(gin.TestMode)
		os.Setenv("ENV", "test")
	})
}

// InitializeScenario registers all step definitions.
func InitializeScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		db := mock.NewDb()
		if err := db.Reset(); err != nil {
			return ctx, fmt.Errorf("failed to reset database: %w", err)
		}

		redisClient := mock.NewRedis()
		if err := mock.ClearRedis(redisClient); err != nil {
			return ctx, fmt.Errorf("failed to clear redis: %w", err)
		}

		tc := &TestContext{
			requestHeaders: make(map[string]string),
			templates:      make(map[string]*entity.RecurringTemplate),
			userID:         uuid.New(),
			db:             db,
		}

		tc.templateRepo = persistence.NewRecurringTemplateRepository(db.DbConn)
		tc.transactionRepo = persistence.NewTransactionRepository(db.DbConn)
		tc.accountRepo = persistence.NewAccountRepository(db.DbConn)
		tc.tokenService = adapters.NewTokenService(testJWTSecret, time.Hour)

		locker := adapters.NewRedisRunLocker(redisClient)
		tc.processUseCase = recurring.NewProcessRecurringUseCase(
			tc.templateRepo,
			tc.transactionRepo,
			tc.accountRepo,
			locker,
			time.Minute,
		)

		healthController := controller.NewHealthController(func() bool { return true })
		recurringController := controller.NewRecurringController(tc.processUseCase)
		templateController := controller.NewTemplateController(
			template.NewCreateTemplateUseCase(tc.templateRepo, tc.accountRepo, nil),
			template.NewListTemplatesUseCase(tc.templateRepo),
			template.NewUpdateTemplateUseCase(tc.templateRepo),
			template.NewDeleteTemplateUseCase(tc.templateRepo),
		)
		accountController := controller.NewAccountController(
			account.NewCreateAccountUseCase(tc.accountRepo),
			account.NewListAccountsUseCase(tc.accountRepo),
			account.NewGetAccountUseCase(tc.accountRepo),
		)
		transactionController := controller.NewTransactionController(
			transaction.NewListTransactionsUseCase(tc.transactionRepo),
		)

		r := router.NewRouter(
			healthController,
			recurringController,
			templateController,
			accountController,
			transactionController,
			middleware.NewRateLimiter(),
			middleware.NewAuthMiddleware(tc.tokenService),
		)
		tc.server = httptest.NewServer(r.Setup("test"))

		return SetTestContext(ctx, tc), nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		tc := GetTestContext(ctx)
		if tc != nil && tc.server != nil {
			tc.server.Close()
		}
		return ctx, nil
	})

	registerAPISteps(ctx)
	registerResponseSteps(ctx)
	registerEngineSteps(ctx)
}

// registerAPISteps registers HTTP request steps.
func registerAPISteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the API server is running$`, theAPIServerIsRunning)
	ctx.Step(`^I am authenticated$`, iAmAuthenticated)
	ctx.Step(`^I send a "([^"]*)" request to "([^"]*)"$`, iSendARequestTo)
	ctx.Step(`^I send a "([^"]*)" request to "([^"]*)" with body:$`, iSendARequestToWithBody)
}

// registerResponseSteps registers response validation steps.
func registerResponseSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the response status should be (\d+)$`, theResponseStatusShouldBe)
	ctx.Step(`^the response should be JSON$`, theResponseShouldBeJSON)
	ctx.Step(`^the response should contain "([^"]*)"$`, theResponseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, theResponseFieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should exist$`, theResponseFieldShouldExist)
}

// substitute replaces fixture placeholders in request paths and bodies.
func (tc *TestContext) substitute(s string) string {
	s = strings.ReplaceAll(s, "{account_id}", tc.accountID.String())
	for merchant, tmpl := range tc.templates {
		placeholder := "{template_id:" + merchant + "}"
		s = strings.ReplaceAll(s, placeholder, tmpl.ID.String())
	}
	return s
}

func (tc *TestContext) doRequest(method, endpoint string, body io.Reader) error {
	req, err := http.NewRequest(method, tc.server.URL+tc.substitute(endpoint), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range tc.requestHeaders {
		req.Header.Set(key, value)
	}
	if tc.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.accessToken)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	tc.response = resp
	tc.responseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// Step implementations

func theAPIServerIsRunning(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil || tc.server == nil {
		return fmt.Errorf("test server is not running")
	}
	return nil
}

func iAmAuthenticated(ctx context.Context) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}

	token, err := tc.tokenService.GenerateAccessToken(ctx, tc.userID, "user@example.com")
	if err != nil {
		return ctx, fmt.Errorf("failed to issue access token: %w", err)
	}
	tc.accessToken = token
	return SetTestContext(ctx, tc), nil
}

func iSendARequestTo(ctx context.Context, method, endpoint string) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}
	if err := tc.doRequest(method, endpoint, nil); err != nil {
		return ctx, err
	}
	return SetTestContext(ctx, tc), nil
}

func iSendARequestToWithBody(ctx context.Context, method, endpoint string, body *godog.DocString) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}
	payload := bytes.NewBufferString(tc.substitute(body.Content))
	if err := tc.doRequest(method, endpoint, payload); err != nil {
		return ctx, err
	}
	return SetTestContext(ctx, tc), nil
}

func theResponseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if tc.response == nil {
		return fmt.Errorf("no response received")
	}
	if tc.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d. Body: %s", expectedStatus, tc.response.StatusCode, string(tc.responseBody))
	}
	return nil
}

func theResponseShouldBeJSON(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	var js json.RawMessage
	if err := json.Unmarshal(tc.responseBody, &js); err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	return nil
}

func theResponseShouldContain(ctx context.Context, expected string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if !strings.Contains(string(tc.responseBody), expected) {
		return fmt.Errorf("response does not contain '%s'. Body: %s", expected, string(tc.responseBody))
	}
	return nil
}

func theResponseFieldShouldBe(ctx context.Context, field, expected string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	var data map[string]interface{}
	if err := json.Unmarshal(tc.responseBody, &data); err != nil {
		return fmt.Errorf("failed to parse response JSON: %w", err)
	}

	value, ok := data[field]
	if !ok {
		return fmt.Errorf("field '%s' not found in response", field)
	}

	actual := fmt.Sprintf("%v", value)
	if actual != expected {
		return fmt.Errorf("field '%s' expected '%s', got '%s'", field, expected, actual)
	}
	return nil
}

func theResponseFieldShouldExist(ctx context.Context, field string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	var data map[string]interface{}
	if err := json.Unmarshal(tc.responseBody, &data); err != nil {
		return fmt.Errorf("failed to parse response JSON: %w", err)
	}

	if _, ok := data[field]; !ok {
		return fmt.Errorf("field '%s' not found in response", field)
	}
	return nil
}

// mustDecimal parses a decimal literal used in feature files.
func mustDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return d, nil
}
