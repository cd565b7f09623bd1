package mocks

import (
	"sync"

	"othello_server/internal/dependencies/random"
)

// MockRandom returns queued values from Intn, then 0.
type MockRandom struct {
	mu      sync.Mutex
	results []int
}

var _ random.Random = (*MockRandom)(nil)

func NewMockRandom(values ...int) *MockRandom {
	return &MockRandom{results: values}
}

func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.results) == 0 {
		return 0
	}
	v := r.results[0]
	r.results = r.results[1:]
	return v
}

// Queue appends values to be returned by later Intn calls.
func (r *MockRandom) Queue(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, values...)
}
