package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Nishanthpaka11/TinyLink/internal/app/model"
	"github.com/Nishanthpaka11/TinyLink/internal/app/repository"
	"github.com/Nishanthpaka11/TinyLink/internal/app/resolver"
	"github.com/Nishanthpaka11/TinyLink/internal/app/validate"
)

var (
	// ErrDomainUnreachable signals that the target hostname failed the
	// creation-time DNS gate.
	ErrDomainUnreachable = errors.New("domain does not exist")
	// ErrReservedCode signals a redirect code that collides with the
	// service's own routing namespace.
	ErrReservedCode = errors.New("code is reserved")
)

// reservedCodes are path tokens owned by the API itself; a redirect on
// one of them is answered 404 before any lookup.
var reservedCodes = map[string]struct{}{
	"api":     {},
	"healthz": {},
}

// LinkService is the public contract of the link registry. All shared
// state lives in the store; the service holds nothing across requests.
type LinkService interface {
	CreateLink(ctx context.Context, url, customCode string) (*model.Link, error)
	ListLinks(ctx context.Context) ([]model.Link, error)
	GetStats(ctx context.Context, code string) (*model.Link, error)
	DeleteLink(ctx context.Context, code string) error
	Redirect(ctx context.Context, code string) (string, error)
}

type linkService struct {
	repo      repository.LinkRepository
	allocator *CodeAllocator
	resolver  resolver.HostResolver
	filter    *CodeFilter
}

// NewLinkService wires the registry from its collaborators. filter may
// be nil, in which case the bloom short-circuit is skipped.
func NewLinkService(repo repository.LinkRepository, allocator *CodeAllocator, hostResolver resolver.HostResolver, filter *CodeFilter) LinkService {
	return &linkService{
		repo:      repo,
		allocator: allocator,
		resolver:  hostResolver,
		filter:    filter,
	}
}

// CreateLink validates the URL, gates on DNS, allocates a code and
// persists the link. A custom code that loses the insert race surfaces
// ErrCodeTaken; a random code that loses it is re-allocated.
func (s *linkService) CreateLink(ctx context.Context, url, customCode string) (*model.Link, error) {
	if err := validate.URL(url); err != nil {
		return nil, err
	}

	if !s.resolver.Resolves(ctx, validate.Hostname(url)) {
		return nil, ErrDomainUnreachable
	}

	if customCode != "" {
		code, err := s.allocator.AllocateCustom(ctx, customCode)
		if err != nil {
			return nil, err
		}

		link := &model.Link{Code: code, URL: url}
		if err := s.repo.Create(ctx, link); err != nil {
			// Lost the race against a concurrent creator of the
			// same code: surface the conflict, never retry.
			return nil, fmt.Errorf("create link: %w", err)
		}
		s.noteCode(code)
		return link, nil
	}

	for attempt := 0; attempt < s.allocator.maxAttempts; attempt++ {
		code, err := s.allocator.AllocateRandom(ctx)
		if err != nil {
			return nil, err
		}

		link := &model.Link{Code: code, URL: url}
		err = s.repo.Create(ctx, link)
		if err == nil {
			s.noteCode(code)
			return link, nil
		}
		if errors.Is(err, repository.ErrCodeTaken) {
			// Raced another random creator onto the same code;
			// draw again.
			continue
		}
		return nil, fmt.Errorf("create link: %w", err)
	}
	return nil, ErrAllocationExhausted
}

func (s *linkService) ListLinks(ctx context.Context) ([]model.Link, error) {
	links, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}

func (s *linkService) GetStats(ctx context.Context, code string) (*model.Link, error) {
	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get link: %w", err)
	}
	return link, nil
}

func (s *linkService) DeleteLink(ctx context.Context, code string) error {
	if err := s.repo.Delete(ctx, code); err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	return nil
}

// Redirect resolves a code to its target URL, counting the click in the
// same store operation. Exactly one increment happens per accepted call.
func (s *linkService) Redirect(ctx context.Context, code string) (string, error) {
	if _, reserved := reservedCodes[code]; reserved {
		return "", ErrReservedCode
	}

	if s.filter != nil && !s.filter.MayContain(code) {
		// Bloom filters never report false negatives, so a miss is a
		// definite absence and skips the store round-trip.
		return "", repository.ErrLinkNotFound
	}

	link, err := s.repo.IncrementClick(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return "", repository.ErrLinkNotFound
		}
		return "", fmt.Errorf("increment click: %w", err)
	}
	return link.URL, nil
}

func (s *linkService) noteCode(code string) {
	if s.filter != nil {
		s.filter.Add(code)
	}
}
