package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/certchain-backend/internal/modules/certification"
	"github.com/yungbote/certchain-backend/internal/modules/nft"
	"github.com/yungbote/certchain-backend/internal/observability"
	"github.com/yungbote/certchain-backend/internal/platform/browser"
	"github.com/yungbote/certchain-backend/internal/platform/evm"
	"github.com/yungbote/certchain-backend/internal/platform/lock"
	"github.com/yungbote/certchain-backend/internal/platform/logger"
	"github.com/yungbote/certchain-backend/internal/platform/raster"
)

type Clients struct {
	Store      certification.ContentStore
	Compositor certification.Compositor
	Chain      *evm.ERC721
	Minter     *nft.Minter
	Locks      lock.Locker

	closeStore func() error
	redisLocks *lock.Redis
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	store, closeStore, err := resolveContentStore(ctx, log, cfg)
	if err != nil {
		return Clients{}, err
	}
	out := Clients{Store: store, closeStore: closeStore}

	compositor, err := resolveCompositor(log, cfg)
	if err != nil {
		out.Close()
		return Clients{}, err
	}
	out.Compositor = compositor

	chain, err := evm.Dial(ctx, evm.Config{
		RPCURL:          cfg.RPCURL,
		PrivateKey:      cfg.PrivateKey,
		ContractAddress: cfg.ContractAddress,
	}, log)
	if err != nil {
		out.Close()
		return Clients{}, fmt.Errorf("init chain client: %w", err)
	}
	out.Chain = chain
	out.Minter = nft.NewMinter(nft.MinterDeps{
		Contract:       chain,
		Log:            log,
		Metrics:        metrics,
		SubmitTimeout:  cfg.ChainSubmitTimeout,
		ConfirmTimeout: cfg.ChainConfirmTimeout,
	})

	// Redis
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		r, err := lock.NewRedis(cfg.RedisAddr, cfg.RedisLockPrefix, log)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init redis lock: %w", err)
		}
		out.redisLocks = r
		out.Locks = r
	} else {
		log.Info("REDIS_ADDR not set; issuance lock is process-local")
		out.Locks = lock.NewLocal()
	}
	return out, nil
}

// resolveCompositor picks the rendering engine. A chromium request without
// a browser on the host degrades to the raster compositor.
func resolveCompositor(log *logger.Logger, cfg Config) (certification.Compositor, error) {
	switch cfg.CompositorMode {
	case CompositorChromium, "":
		c := browser.New(browser.Config{ExecPath: cfg.ChromePath}, log)
		if c.Available() {
			log.Info("Selecting compositor", "mode", CompositorChromium)
			return c, nil
		}
		log.Warn("Chromium not found; falling back to raster compositor", "chrome_path", cfg.ChromePath)
		return newRaster(log, cfg)
	case CompositorRaster:
		log.Info("Selecting compositor", "mode", CompositorRaster)
		return newRaster(log, cfg)
	case CompositorDisabled:
		log.Warn("Compositor disabled; issuance will fail with rendering_unavailable")
		return certification.DisabledCompositor(), nil
	default:
		return nil, fmt.Errorf("unsupported COMPOSITOR_MODE %q (allowed: %q, %q, %q)",
			cfg.CompositorMode, CompositorChromium, CompositorRaster, CompositorDisabled)
	}
}

func newRaster(log *logger.Logger, cfg Config) (certification.Compositor, error) {
	c, err := raster.New(raster.Config{FontPath: cfg.RasterFontPath}, log)
	if err != nil {
		return nil, fmt.Errorf("init raster compositor: %w", err)
	}
	return c, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.redisLocks != nil {
		_ = c.redisLocks.Close()
	}
	if c.Chain != nil {
		c.Chain.Close()
	}
	if c.closeStore != nil {
		_ = c.closeStore()
	}
}
