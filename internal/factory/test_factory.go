package factory

import (
	"time"

	"github.com/skyduel/skyduel/internal/dependencies/mocks"
	"github.com/skyduel/skyduel/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// MockRandom defaults to Bool false, so the first identity passed to match
// creation spawns on the left.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := &mocks.MockRandom{}

	app := newWithDependencies(store, mockClock, mockRandom, Config{}, nil)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
