package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"gorm.io/gorm"

	"github.com/Nishanthpaka11/TinyLink/internal/app/model"
)

const (
	filterCapacity = 1_000_000
	filterFPRate   = 0.001
)

// CodeFilter is a bloom filter over live short codes. On the redirect
// path a definite miss answers 404 without touching the store; a hit
// (including false positives and deleted codes) falls through to the
// store, which stays the source of truth.
type CodeFilter struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// NewCodeFilter returns an empty filter sized for the expected live-code
// population.
func NewCodeFilter() *CodeFilter {
	return &CodeFilter{
		filter: bloom.NewWithEstimates(filterCapacity, filterFPRate),
	}
}

// Seed loads every existing code from the database. Called once at boot,
// before the server accepts traffic.
func (f *CodeFilter) Seed(ctx context.Context, db *gorm.DB) (int, error) {
	var codes []string
	if err := db.WithContext(ctx).
		Model(&model.Link{}).
		Pluck("code", &codes).Error; err != nil {
		return 0, fmt.Errorf("seed code filter: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, code := range codes {
		f.filter.AddString(code)
	}
	return len(codes), nil
}

// Add records a newly created code.
func (f *CodeFilter) Add(code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter.AddString(code)
}

// MayContain reports whether the code might exist. False means the code
// has never been created since boot.
func (f *CodeFilter) MayContain(code string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.TestString(code)
}
