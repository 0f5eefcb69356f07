package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/Nishanthpaka11/TinyLink/internal/app/repository"
	"github.com/Nishanthpaka11/TinyLink/internal/app/validate"
)

var (
	// ErrAllocationExhausted means random generation failed to find a
	// free code within the attempt bound. With a 62^6 space this only
	// happens when the store is pathologically full or broken.
	ErrAllocationExhausted = errors.New("could not allocate a unique code")
)

const (
	codeAlphabet       = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	randomCodeLength   = 6
	defaultMaxAttempts = 32
)

// CodeAllocator produces globally unique short codes: it validates a
// caller-supplied custom code or generates a random one with collision
// retry. The store's unique key remains the final authority either way.
type CodeAllocator struct {
	repo        repository.LinkRepository
	maxAttempts int
}

// NewCodeAllocator builds an allocator over the given repository. A
// non-positive maxAttempts falls back to the default bound.
func NewCodeAllocator(repo repository.LinkRepository, maxAttempts int) *CodeAllocator {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &CodeAllocator{repo: repo, maxAttempts: maxAttempts}
}

// AllocateCustom validates the code's format and pre-checks uniqueness.
// The pre-check only avoids a doomed insert; a race between two creators
// of the same code is settled by the store's unique constraint.
func (a *CodeAllocator) AllocateCustom(ctx context.Context, code string) (string, error) {
	if err := validate.CodeFormat(code); err != nil {
		return "", err
	}

	taken, err := a.repo.Exists(ctx, code)
	if err != nil {
		return "", fmt.Errorf("check code: %w", err)
	}
	if taken {
		return "", repository.ErrCodeTaken
	}
	return code, nil
}

// AllocateRandom samples 6-char codes until one is free of collisions,
// bounded by maxAttempts.
func (a *CodeAllocator) AllocateRandom(ctx context.Context) (string, error) {
	for i := 0; i < a.maxAttempts; i++ {
		code, err := randomCode(randomCodeLength)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}

		taken, err := a.repo.Exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrAllocationExhausted
}

func randomCode(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	code := make([]byte, n)
	for i, b := range buf {
		code[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(code), nil
}
