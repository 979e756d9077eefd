package secrets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	pkgsecrets "github.com/flipscout/pricecheck/pkg/secrets"
)

// SourceKey holds the upstream API credentials for one marketplace source.
// Secret JSON format: {"api_key": "..."}
type SourceKey struct {
	APIKey string
}

// Resolver resolves per-source API credentials.
type Resolver interface {
	// Resolve fetches the SourceKey for a given source name, using cache when available.
	Resolve(ctx context.Context, source string) (SourceKey, error)

	// DiscoverSources lists all source names that have keys configured.
	DiscoverSources(ctx context.Context) ([]string, error)
}

// AWSResolver resolves per-source API keys from AWS Secrets Manager with a local TTL cache.
//
// Secret naming convention: {prefix}{source}, e.g. "pricecheck/sources/stockx".
type AWSResolver struct {
	logger   *zap.Logger
	prefix   string
	provider pkgsecrets.Provider
	cache    *pkgsecrets.Cache[SourceKey]
}

// NewAWSResolver constructs a source key resolver using AWS Secrets Manager and local cache.
func NewAWSResolver(
	logger *zap.Logger,
	prefix string,
	provider pkgsecrets.Provider,
	cache *pkgsecrets.Cache[SourceKey],
) *AWSResolver {
	return &AWSResolver{
		logger:   logger,
		prefix:   prefix,
		provider: provider,
		cache:    cache,
	}
}

// Resolve fetches or caches the SourceKey for a given source name.
func (r *AWSResolver) Resolve(ctx context.Context, source string) (SourceKey, error) {
	secretName := r.prefix + source

	if key, ok := r.cache.Get(secretName); ok {
		return key, nil
	}

	raw, err := r.provider.GetSecret(ctx, secretName)
	if err != nil {
		return SourceKey{}, fmt.Errorf("resolve source key for %q: %w", source, err)
	}

	key := SourceKey{APIKey: raw["api_key"]}
	if key.APIKey == "" {
		return SourceKey{}, fmt.Errorf("secret %q is missing required field 'api_key'", secretName)
	}

	r.cache.Put(secretName, key)
	r.logger.Debug("secrets.source_key_resolved", zap.String("source", source))
	return key, nil
}

// DiscoverSources lists all source names that have secrets configured under the prefix.
func (r *AWSResolver) DiscoverSources(ctx context.Context) ([]string, error) {
	names, err := r.provider.ListSecrets(ctx, r.prefix)
	if err != nil {
		return nil, err
	}

	sources := make([]string, 0, len(names))
	for _, name := range names {
		sources = append(sources, strings.TrimPrefix(name, r.prefix))
	}
	return sources, nil
}
