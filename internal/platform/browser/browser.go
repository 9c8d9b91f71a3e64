package browser

import (
	"context"
	"encoding/base64"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/yungbote/certchain-backend/internal/domain/certification"
	"github.com/yungbote/certchain-backend/internal/domain/faults"
	"github.com/yungbote/certchain-backend/internal/platform/logger"
)

type Config struct {
	// ExecPath is the Chrome/Chromium binary. Empty lets chromedp search
	// the usual locations.
	ExecPath string
	Width    int64
	Height   int64
	Scale    float64
	// IdleTimeout bounds the wait for network idle after load. The overall
	// deadline still comes from the caller's context.
	IdleTimeout time.Duration
}

// Compositor rasterizes certificate markup in a headless Chromium. Every
// call launches its own browser and tears it down before returning.
type Compositor struct {
	cfg Config
	log *logger.Logger
}

func New(cfg Config, log *logger.Logger) *Compositor {
	if cfg.Width <= 0 {
		cfg.Width = 1600
	}
	if cfg.Height <= 0 {
		cfg.Height = 900
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 2
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 15 * time.Second
	}
	return &Compositor{cfg: cfg, log: log.Named("compositor.chromium")}
}

// Available reports whether a browser binary can be found. Used at startup
// to decide between this compositor and the raster fallback.
func (c *Compositor) Available() bool {
	if p := strings.TrimSpace(c.cfg.ExecPath); p != "" {
		_, err := exec.LookPath(p)
		return err == nil
	}
	for _, name := range []string{"headless-shell", "chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

func (c *Compositor) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.NoSandbox,
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.WindowSize(int(c.cfg.Width), int(c.cfg.Height)),
	)
	if p := strings.TrimSpace(c.cfg.ExecPath); p != "" {
		opts = append(opts, chromedp.ExecPath(p))
	}
	return opts
}

func (c *Compositor) Composite(ctx context.Context, doc certification.Document) ([]byte, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, c.allocatorOptions()...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(allocCtx)
	// Canceling the first browser context closes Chromium and waits for it.
	defer cancelBrowser()

	start := time.Now()
	if err := chromedp.Run(bctx); err != nil {
		return nil, stageFault(faults.OpCompositorLaunch, "headless browser failed to start", err)
	}
	idle := newIdleWatcher()
	chromedp.ListenTarget(bctx, idle.observe)

	url := "data:text/html;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(doc.HTML))
	if err := chromedp.Run(bctx,
		chromedp.EmulateViewport(c.cfg.Width, c.cfg.Height, chromedp.EmulateScale(c.cfg.Scale)),
		page.SetLifecycleEventsEnabled(true),
		chromedp.Navigate(url),
	); err != nil {
		return nil, stageFault(faults.OpCompositorRender, "page load failed", err)
	}

	waitCtx, cancelWait := context.WithTimeout(bctx, c.cfg.IdleTimeout)
	err := idle.wait(waitCtx)
	cancelWait()
	if err != nil {
		return nil, stageFault(faults.OpCompositorRender, "network never went idle", err)
	}

	var buf []byte
	if err := chromedp.Run(bctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return nil, stageFault(faults.OpCompositorCapture, "screenshot failed", err)
	}
	if len(buf) == 0 {
		return nil, faults.New(faults.CodeRenderingUnavailable, faults.OpCompositorCapture, "empty screenshot", nil)
	}
	c.log.Debug("certificate rasterized", "bytes", len(buf), "elapsed", time.Since(start))
	return buf, nil
}

func stageFault(op, msg string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "deadline exceeded"
	}
	return faults.New(faults.CodeRenderingUnavailable, op, msg, err)
}

// idleWatcher waits for the networkIdle lifecycle event of the navigation
// that follows the most recent "init".
type idleWatcher struct {
	mu    sync.Mutex
	armed bool
	done  chan struct{}
	once  *sync.Once
}

func newIdleWatcher() *idleWatcher {
	return &idleWatcher{done: make(chan struct{}), once: &sync.Once{}}
}

func (w *idleWatcher) observe(ev interface{}) {
	e, ok := ev.(*page.EventLifecycleEvent)
	if !ok {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	switch e.Name {
	case "init":
		w.armed = true
	case "networkIdle":
		if w.armed {
			w.once.Do(func() { close(w.done) })
		}
	}
}

func (w *idleWatcher) wait(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
