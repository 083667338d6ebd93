package service

import (
	"context"
	"errors"
	"fmt"

	"urlmapper/internal/database"
	"urlmapper/internal/models"
)

// ErrKeyGenerationExhausted is returned when every generated key collided
// with an existing mapping within the retry cap.
var ErrKeyGenerationExhausted = errors.New("exhausted attempts to generate a unique key")

// maxKeyAttempts bounds the collision retry loop in ShortenURL. Repeated
// collisions at this rate indicate a broken randomness source, not bad luck.
const maxKeyAttempts = 5

// URLRepository defines the interface for working with mappings at the
// business logic layer.
type URLRepository interface {
	// Create inserts a new mapping with the given key and target URL.
	// Returns database.ErrKeyExists if the key is already taken.
	Create(ctx context.Context, key, targetURL string) (*models.URLMapping, error)

	// ResolveAndCount returns the active mapping for a key while atomically
	// incrementing its click counter. Returns database.ErrMappingNotFound
	// for missing or inactive keys.
	ResolveAndCount(ctx context.Context, key string) (*models.URLMapping, error)

	// GetByKey retrieves a mapping by key without side effects,
	// including inactive ones.
	GetByKey(ctx context.Context, key string) (*models.URLMapping, error)

	// Deactivate clears the active flag of a mapping.
	Deactivate(ctx context.Context, key string) (*models.URLMapping, error)
}

// KeyGenerator produces candidate keys for new mappings. Implementations
// are stateless and give no uniqueness guarantee.
type KeyGenerator interface {
	Generate() (string, error)
}

// URLService provides methods to manage URL mappings. Collision handling
// lives here: the repository reports a collision, the service retries with
// a fresh key.
type URLService struct {
	repo   URLRepository
	keygen KeyGenerator
}

// NewURLService creates a new instance of URLService with the provided
// repository and key generator.
func NewURLService(repo URLRepository, keygen KeyGenerator) *URLService {
	return &URLService{
		repo:   repo,
		keygen: keygen,
	}
}

// ShortenURL stores a new mapping for the provided target URL under a
// freshly generated key. Key collisions are absorbed and retried up to
// maxKeyAttempts times; any other failure propagates unchanged.
func (s *URLService) ShortenURL(ctx context.Context, targetURL string) (*models.URLMapping, error) {
	const op = "service.URLService.ShortenURL"

	for i := 0; i < maxKeyAttempts; i++ {
		key, err := s.keygen.Generate()
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate key: %w", op, err)
		}

		mapping, err := s.repo.Create(ctx, key, targetURL)
		if err != nil {
			if errors.Is(err, database.ErrKeyExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return mapping, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrKeyGenerationExhausted)
}

// ResolveURL returns the mapping for the given key, counting the access.
// Inactive mappings resolve as not found.
func (s *URLService) ResolveURL(ctx context.Context, key string) (*models.URLMapping, error) {
	const op = "service.URLService.ResolveURL"

	mapping, err := s.repo.ResolveAndCount(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve key: %w", op, err)
	}

	return mapping, nil
}

// InspectURL retrieves the mapping for the given key without counting the
// access. Inactive mappings remain visible here.
func (s *URLService) InspectURL(ctx context.Context, key string) (*models.URLMapping, error) {
	const op = "service.URLService.InspectURL"

	mapping, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to inspect key: %w", op, err)
	}

	return mapping, nil
}

// DeactivateURL turns off resolution for the mapping with the given key.
// The mapping stays inspectable and its key is never reused.
func (s *URLService) DeactivateURL(ctx context.Context, key string) (*models.URLMapping, error) {
	const op = "service.URLService.DeactivateURL"

	mapping, err := s.repo.Deactivate(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to deactivate url: %w", op, err)
	}

	return mapping, nil
}
