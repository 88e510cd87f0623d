package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"troskovi/internal/cache"
	"troskovi/internal/core"
)

const (
	suggestionCacheSize = 256
	suggestionCacheTTL  = 30 * time.Second
)

// AutocompleteService aggregates previously used expense values into ranked
// suggestion lists. Results are cached briefly; API expense writes call
// Invalidate, other writers are picked up when the TTL lapses.
type AutocompleteService struct {
	store SuggestionStore
	cache *cache.LRU[[]core.Suggestion]
}

func NewAutocompleteService(store SuggestionStore) *AutocompleteService {
	return &AutocompleteService{
		store: store,
		cache: cache.NewLRU[[]core.Suggestion](suggestionCacheSize, suggestionCacheTTL),
	}
}

// Invalidate drops all cached suggestion lists so the next request sees
// freshly aggregated values.
func (s *AutocompleteService) Invalidate() {
	s.cache.Purge()
}

// Shops suggests shop names, optionally narrowed by a search term.
func (s *AutocompleteService) Shops(ctx context.Context, search string) ([]core.Suggestion, error) {
	return s.cached(ctx, "shops", search, s.store.CountShopNames)
}

// Products suggests product descriptions.
func (s *AutocompleteService) Products(ctx context.Context, search string) ([]core.Suggestion, error) {
	return s.cached(ctx, "products", search, s.store.CountProductDescriptions)
}

// Categories suggests categories actually used in stored expenses.
func (s *AutocompleteService) Categories(ctx context.Context, search string) ([]core.Suggestion, error) {
	return s.cached(ctx, "categories", search, s.store.CountCategories)
}

// Tags suggests individual tags, counted across all stored tag sets.
func (s *AutocompleteService) Tags(ctx context.Context, search string) ([]core.Suggestion, error) {
	return s.cached(ctx, "tags", search, s.countTags)
}

func (s *AutocompleteService) countTags(ctx context.Context) ([]core.Suggestion, error) {
	sets, err := s.store.ExpenseTagSets(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, tags := range sets {
		for _, tag := range tags {
			if tag != "" {
				counts[tag]++
			}
		}
	}

	suggestions := make([]core.Suggestion, 0, len(counts))
	for value, count := range counts {
		suggestions = append(suggestions, core.Suggestion{Value: value, Count: count})
	}
	return suggestions, nil
}

func (s *AutocompleteService) cached(ctx context.Context, kind, search string, load func(context.Context) ([]core.Suggestion, error)) ([]core.Suggestion, error) {
	key := kind + "\x00" + strings.ToLower(strings.TrimSpace(search))
	if hit, ok := s.cache.Get(key); ok {
		return hit, nil
	}

	suggestions, err := load(ctx)
	if err != nil {
		return nil, err
	}

	ranked := rank(suggestions, search)
	s.cache.Set(key, ranked)
	return ranked, nil
}

// rank filters by case-insensitive substring match and orders by usage count
// descending, ties broken alphabetically.
func rank(suggestions []core.Suggestion, search string) []core.Suggestion {
	out := make([]core.Suggestion, 0, len(suggestions))
	needle := strings.ToLower(strings.TrimSpace(search))
	for _, s := range suggestions {
		if needle == "" || strings.Contains(strings.ToLower(s.Value), needle) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}
