package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"crypto_adda/internal/domain"
)

// BookmarksKey is the key holding the JSON array of bookmarked coin ids.
const BookmarksKey = "bookmarkedCoins"

// BookmarkStore persists the set of bookmarked coin ids in a KV.
//
// Display reads never fail: an absent or unreadable value is an empty set.
// Updates read the stored set first and write nothing when that read fails,
// so a transient store error cannot wipe the saved bookmarks.
type BookmarkStore struct {
	kv KV
	mu sync.Mutex // serializes read-modify-write cycles
}

func NewBookmarkStore(kv KV) *BookmarkStore {
	return &BookmarkStore{kv: kv}
}

// Load returns the persisted set, or an empty set when nothing usable is stored.
func (b *BookmarkStore) Load(ctx context.Context) domain.BookmarkSet {
	set, err := b.load(ctx)
	if err != nil {
		slog.Warn("Failed to read bookmarks", slog.Any("error", err))
		return domain.NewBookmarkSet()
	}
	return set
}

// load fails only when the KV cannot be read. A corrupt value decodes to an
// empty set and is overwritten by the next save.
func (b *BookmarkStore) load(ctx context.Context) (domain.BookmarkSet, error) {
	raw, err := b.kv.Get(ctx, BookmarksKey)
	if err != nil {
		return nil, fmt.Errorf("read bookmarks: %w", err)
	}
	if raw == "" {
		return domain.NewBookmarkSet(), nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		slog.Warn("Ignoring corrupt bookmarks", slog.Any("error", err))
		return domain.NewBookmarkSet(), nil
	}
	return domain.NewBookmarkSet(ids...), nil
}

func (b *BookmarkStore) IsBookmarked(ctx context.Context, coinID string) bool {
	return b.Load(ctx).Has(coinID)
}

// Toggle flips the membership of coinID and returns the new membership.
// On error the returned membership is the one still stored.
func (b *BookmarkStore) Toggle(ctx context.Context, coinID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, err := b.load(ctx)
	if err != nil {
		slog.Error("Bookmark toggle aborted", slog.String("coin", coinID), slog.Any("error", err))
		return false, err
	}
	now := set.Toggle(coinID)
	if err := b.save(ctx, set); err != nil {
		return !now, err
	}
	return now, nil
}

// Add bookmarks coinID. Adding an existing bookmark is a no-op.
func (b *BookmarkStore) Add(ctx context.Context, coinID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, err := b.load(ctx)
	if err != nil {
		return err
	}
	if set.Has(coinID) {
		return nil
	}
	set.Add(coinID)
	return b.save(ctx, set)
}

// Remove drops coinID from the bookmarks. Removing an absent id is a no-op.
func (b *BookmarkStore) Remove(ctx context.Context, coinID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, err := b.load(ctx)
	if err != nil {
		return err
	}
	if !set.Has(coinID) {
		return nil
	}
	set.Remove(coinID)
	return b.save(ctx, set)
}

// ListBookmarked returns the coins of allCoins that are bookmarked, in list
// order. Bookmarked ids missing from allCoins are skipped.
func (b *BookmarkStore) ListBookmarked(ctx context.Context, allCoins []domain.Coin) []domain.Coin {
	return b.Load(ctx).Filter(allCoins)
}

func (b *BookmarkStore) save(ctx context.Context, set domain.BookmarkSet) error {
	data, err := json.Marshal(set.IDs())
	if err != nil {
		return fmt.Errorf("failed to marshal bookmarks: %w", err)
	}
	if err := b.kv.Put(ctx, BookmarksKey, string(data)); err != nil {
		slog.Error("Failed to save bookmarks", slog.Any("error", err))
		return fmt.Errorf("save bookmarks: %w", err)
	}
	return nil
}
