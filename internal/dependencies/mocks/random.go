package mocks

import "github.com/skyduel/skyduel/internal/dependencies/random"

// MockRandom is a deterministic Random for testing. Intn values are consumed
// from Values in order, then 0 forever; Bool always returns BoolValue.
type MockRandom struct {
	Values    []int
	BoolValue bool
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// Intn pops the next scripted value, or returns 0 when exhausted
func (r *MockRandom) Intn(n int) int {
	if len(r.Values) == 0 {
		return 0
	}
	v := r.Values[0]
	r.Values = r.Values[1:]
	if n > 0 {
		v = v % n
	}
	return v
}

// Bool returns the configured boolean
func (r *MockRandom) Bool() bool {
	return r.BoolValue
}
