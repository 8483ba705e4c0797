package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"crypto_adda/internal/infra"
	"crypto_adda/internal/infra/coingecko"
	"crypto_adda/internal/market"
	"crypto_adda/internal/storage"
)

// prefetchWorkers bounds concurrent history fetches during warm-up.
const prefetchWorkers = 3

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config    *infra.Config
	KV        storage.KV
	Bookmarks *storage.BookmarkStore
	Client    *coingecko.Client
	Cache     *market.CoinCache

	lock *infra.InstanceLock
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads config, opens the bookmark store and builds the market
// data cache. It takes the single instance lock on the workspace.
func (b *Bootstrap) Initialize() error {
	return b.initialize(true)
}

// InitializeShared is Initialize without the instance lock, for short lived
// tools that run next to the server.
func (b *Bootstrap) InitializeShared() error {
	return b.initialize(false)
}

func (b *Bootstrap) initialize(lock bool) error {
	// 1. Config, then the optional secret file
	cfg, err := infra.LoadConfig(infra.ResolveConfigPath())
	if err != nil {
		return err
	}
	secretPath := infra.ResolveSecretPath()
	if secret, err := infra.LoadSecretConfig(secretPath); err == nil {
		cfg.ApplySecrets(secret)
	} else if !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Ignoring unreadable secret file", slog.String("path", secretPath), slog.Any("error", err))
	}
	b.Config = cfg
	infra.SetUserAgent(infra.PlatformUserAgent(cfg.App.Name, cfg.App.Version))

	// 2. Logger
	slog.SetDefault(infra.NewLogger(cfg))
	slog.Info("Bootstrapping CryptoAdda...")

	// 3. Workspace
	workDir := infra.WorkspaceDir()
	dataDir := filepath.Join(workDir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	if lock {
		l, err := infra.AcquireInstanceLock(workDir)
		if err != nil {
			return err
		}
		b.lock = l
	}

	// 4. Bookmark store
	kv, err := openKV(cfg.Storage.Driver, dataDir)
	if err != nil {
		b.Close()
		return err
	}
	b.KV = kv
	b.Bookmarks = storage.NewBookmarkStore(kv)
	slog.Info("Bookmark store ready",
		slog.String("driver", cfg.Storage.Driver),
		slog.String("dir", dataDir))

	// 5. Market data
	b.Client = coingecko.NewClientFromConfig(cfg)
	b.Cache = market.NewCoinCache(b.Client, market.OptionsFromConfig(cfg))
	slog.Info("Market data client ready", slog.String("url", cfg.API.CoinGecko.RestURL))

	return nil
}

func openKV(driver, dataDir string) (storage.KV, error) {
	switch driver {
	case infra.StorageFile:
		return storage.NewFileKV(filepath.Join(dataDir, "kv"))
	case infra.StorageSQLite, "":
		return storage.NewStore(filepath.Join(dataDir, "bookmarks.db"))
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

// WarmUp fills the cache in the background: the coin list first, then the
// price history of every bookmarked coin.
func (b *Bootstrap) WarmUp(ctx context.Context) {
	slog.Info("Warming up market cache...")

	b.Cache.FetchCoinList(ctx)

	ids := b.Bookmarks.Load(ctx).IDs()

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, prefetchWorkers)

	for _, id := range ids {
		wg.Add(1)
		go func(coinID string) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			b.Cache.FetchPriceHistory(ctx, coinID)
		}(id)
	}

	wg.Wait()
	slog.Info("Market cache warm-up completed",
		slog.Int("coins", len(b.Cache.Coins())),
		slog.Int("bookmarks", len(ids)))
}

// Close releases the store and the instance lock.
func (b *Bootstrap) Close() {
	if b.KV != nil {
		if err := b.KV.Close(); err != nil {
			slog.Warn("Failed to close bookmark store", slog.Any("error", err))
		}
		b.KV = nil
	}
	b.lock.Release()
	b.lock = nil
}
