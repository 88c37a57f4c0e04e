package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"bloggenie-server/internal/domain"
	"bloggenie-server/internal/repository"
)

type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{messages: []string{}}
}

func (m *MockLogger) add(s string) {
	m.mu.Lock()
	m.messages = append(m.messages, s)
	m.mu.Unlock()
}

func (m *MockLogger) Info(msg string, args ...interface{})  { m.add("INFO: " + msg) }
func (m *MockLogger) Debug(msg string, args ...interface{}) { m.add("DEBUG: " + msg) }
func (m *MockLogger) Warn(msg string, args ...interface{})  { m.add("WARN: " + msg) }
func (m *MockLogger) Error(msg string, err error, args ...interface{}) {
	if err != nil {
		m.add("ERROR: " + msg + " - " + err.Error())
		return
	}
	m.add("ERROR: " + msg)
}

// testClock is a settable time source shared by the services under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// testEnv wires every service on an in-memory store and an offline generator.
type testEnv struct {
	clock         *testClock
	logger        *MockLogger
	store         *repository.MemoryStore
	subscriptions *SubscriptionService
	usage         *UsageService
	prefs         *UserPreferencesService
	generator     *Generator
	ideas         *IdeaService
	posts         *PostService
	gateway       *SandboxGateway
	payments      *PaymentService
	ratings       *RatingService
	paymentRepo   *repository.PaymentRepository
}

func newTestEnv() *testEnv {
	return newTestEnvWith(nil, nil)
}

// newTestEnvWith lets a test swap the generator or the idea repository.
func newTestEnvWith(gen domain.ContentGenerator, ideaRepo domain.IdeaRepository) *testEnv {
	env := &testEnv{
		clock:  newTestClock(),
		logger: NewMockLogger(),
		store:  repository.NewMemoryStore(),
	}

	subRepo := repository.NewSubscriptionRepository(env.store, env.logger)
	env.paymentRepo = repository.NewPaymentRepository(env.store, env.logger)
	prefRepo := repository.NewPreferenceRepository(env.store, env.logger)
	if ideaRepo == nil {
		ideaRepo = repository.NewIdeaRepository(env.store, env.logger)
	}

	env.subscriptions = NewSubscriptionService(subRepo, env.paymentRepo, env.logger)
	env.subscriptions.now = env.clock.Now
	env.usage = NewUsageService(repository.NewUsageRepository(env.store, env.logger), env.logger)
	env.usage.now = env.clock.Now
	env.prefs = NewUserPreferencesService(prefRepo, env.logger)
	env.prefs.now = env.clock.Now
	env.generator = NewGenerator(nil, env.logger)
	env.generator.now = env.clock.Now
	if gen == nil {
		gen = env.generator
	}

	env.ideas = NewIdeaService(ideaRepo, env.subscriptions, env.usage, env.prefs, gen, env.logger)
	env.ideas.now = env.clock.Now
	env.posts = NewPostService(repository.NewPostRepository(env.store, env.logger), env.ideas, env.subscriptions, gen, env.logger)
	env.posts.now = env.clock.Now
	env.gateway = NewSandboxGateway()
	env.payments = NewPaymentService(env.gateway, env.paymentRepo, env.subscriptions, env.logger)
	env.payments.now = env.clock.Now
	env.ratings = NewRatingService(repository.NewRatingRepository(env.store, env.logger), prefRepo, DefaultRatingCooldown, env.logger)
	env.ratings.now = env.clock.Now
	return env
}

// activate puts user on tier through the real payment path.
func (env *testEnv) activate(user *domain.User, tier domain.PlanTier) *domain.ActivationResult {
	checkout, err := env.payments.Checkout(context.Background(), user, tier.String(), "United States", "", "")
	if err != nil {
		panic(err)
	}
	res, err := env.payments.Complete(context.Background(), user, checkout.Reference, "success", "")
	if err != nil {
		panic(err)
	}
	return res
}

var errStoreDown = errors.New("store unavailable")

type failingUsageRepo struct{ calls int }

func (f *failingUsageRepo) Increment(ctx context.Context, userID, dateKey string, limit int, token string) (int, bool, error) {
	f.calls++
	return 0, false, errStoreDown
}

func (f *failingUsageRepo) Peek(ctx context.Context, userID, dateKey string, token string) (int, error) {
	f.calls++
	return 0, errStoreDown
}

type failingIdeaRepo struct{}

func (failingIdeaRepo) Create(ctx context.Context, idea *domain.BlogIdea, token string) error {
	return errStoreDown
}
func (failingIdeaRepo) Get(ctx context.Context, id string, token string) (*domain.BlogIdea, error) {
	return nil, errStoreDown
}
func (failingIdeaRepo) ListByUser(ctx context.Context, userID string, limit int, token string) ([]*domain.BlogIdea, error) {
	return nil, errStoreDown
}
func (failingIdeaRepo) Delete(ctx context.Context, id string, token string) error {
	return errStoreDown
}

// scriptedCompleter returns canned responses and counts calls.
type scriptedCompleter struct {
	mu       sync.Mutex
	calls    int
	response string
	err      error
}

func (c *scriptedCompleter) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.response, c.err
}

func (c *scriptedCompleter) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// countingGenerator wraps a generator and can block GenerateIdeas until released.
type countingGenerator struct {
	domain.ContentGenerator
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
}

func (g *countingGenerator) GenerateIdeas(ctx context.Context, topic string, count int) ([]*domain.BlogIdea, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.started != nil {
		g.started <- struct{}{}
	}
	if g.release != nil {
		<-g.release
	}
	return g.ContentGenerator.GenerateIdeas(ctx, topic, count)
}

func (g *countingGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}
