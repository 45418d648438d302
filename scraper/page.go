package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/rod/lib/utils"
	"github.com/go-rod/stealth"
	"github.com/use-agent/setlist/extractor"
	"github.com/use-agent/setlist/models"
	"github.com/ysmood/gson"
)

// rodSession owns one Chromium process, one incognito browser context in
// it, and one page in that context.
type rodSession struct {
	launcher  *launcher.Launcher
	browser   *rod.Browser
	incognito *rod.Browser
	page      *rod.Page
}

// openRod launches Chromium and prepares an isolated, configured page.
//
// Lifecycle:
//
//  1. Launch      – fresh process with the automation-masking flags
//  2. Connect     – CDP connection
//  3. Incognito   – isolated browser context for this run only
//  4. Page        – UA, viewport, extra headers, optional stealth script
//
// On any failure the partially built session is closed before returning.
func (s *Scraper) openRod(ctx context.Context) (session, error) {
	cfg := s.browserCfg

	// ── 1. Launch ─────────────────────────────────────────────────────
	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.Proxy != "" {
		l = l.Proxy(cfg.Proxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("window-size"), strconv.Itoa(cfg.ViewportWidth)+","+strconv.Itoa(cfg.ViewportHeight))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			models.StageLaunching,
			"failed to launch browser",
			err,
		)
	}
	sess := &rodSession{launcher: l}
	slog.Debug("browser launched", "controlURL", controlURL)

	// ── 2. Connect ────────────────────────────────────────────────────
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		sess.Close()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			models.StageLaunching,
			"failed to connect to browser",
			err,
		)
	}
	sess.browser = browser

	// ── 3. Incognito context ──────────────────────────────────────────
	incognito, err := browser.Incognito()
	if err != nil {
		sess.Close()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			models.StageLaunching,
			"failed to create isolated browser context",
			err,
		)
	}
	sess.incognito = incognito

	// ── 4. Page ───────────────────────────────────────────────────────
	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		sess.Close()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			models.StageLaunching,
			"failed to create page",
			err,
		)
	}
	sess.page = page

	if err := configurePage(page, cfg.UserAgent, cfg.ViewportWidth, cfg.ViewportHeight, cfg.AcceptLanguage, cfg.Stealth); err != nil {
		sess.Close()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			models.StageLaunching,
			"failed to configure page",
			err,
		)
	}

	return sess, nil
}

// configurePage applies the desktop fingerprint. It must run before
// navigation: the stealth script only affects documents created after it
// is installed.
func configurePage(page *rod.Page, userAgent string, width, height int, acceptLanguage string, useStealth bool) error {
	if useStealth {
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", err,
			)
		}
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent: userAgent,
	}); err != nil {
		return fmt.Errorf("set user agent: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}

	if acceptLanguage != "" {
		if err := (proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(map[string]string{"Accept-Language": acceptLanguage}),
		}).Call(page); err != nil {
			return fmt.Errorf("set extra headers: %w", err)
		}
	}
	return nil
}

// Navigate loads url on the session page and waits for the load event.
// Content rendered by client-side script after load is the extractor's
// concern, not this one.
func (s *rodSession) Navigate(ctx context.Context, url string) (extractor.Document, error) {
	p := s.page.Context(ctx)

	if err := p.Navigate(url); err != nil {
		return nil, categorizeError(err, "navigation to playlist URL failed")
	}
	if err := p.WaitLoad(); err != nil {
		return nil, categorizeError(err, "page load event never fired")
	}
	return &rodDocument{page: s.page}, nil
}

// Close releases page, incognito context and browser, then makes sure the
// process is gone and its profile directory removed. Errors are logged and
// never stop the remaining steps.
func (s *rodSession) Close() {
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			slog.Debug("cleanup: failed to close page", "error", err)
		}
	}
	if s.incognito != nil {
		if err := s.incognito.Close(); err != nil {
			slog.Debug("cleanup: failed to dispose browser context", "error", err)
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			slog.Debug("cleanup: failed to close browser", "error", err)
		}
	}
	s.launcher.Kill()
	s.launcher.Cleanup()
}

// rodDocument adapts a live rod page to extractor.Document. Each call binds
// its own context, so deadlines never outlive the call that set them.
type rodDocument struct {
	page *rod.Page
}

func (d *rodDocument) WaitElement(ctx context.Context, selector string) error {
	_, err := d.page.Context(ctx).Element(selector)
	return err
}

func (d *rodDocument) Element(ctx context.Context, selector string) (extractor.Node, error) {
	el, err := d.page.Context(ctx).Element(selector)
	if err != nil {
		return nil, err
	}
	return rodNode{el: el}, nil
}

func (d *rodDocument) Elements(ctx context.Context, selector string) ([]extractor.Node, error) {
	els, err := d.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}
	nodes := make([]extractor.Node, len(els))
	for i, el := range els {
		nodes[i] = rodNode{el: el}
	}
	return nodes, nil
}

type rodNode struct {
	el *rod.Element
}

func (n rodNode) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, err := n.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

// Text polls for the child until it appears or ctx ends. Element lookups
// on a rod.Element fail on the first miss, so the retry loop lives here.
func (n rodNode) Text(ctx context.Context, selector string) (string, error) {
	el := n.el.Context(ctx)
	child, err := pollLookup(ctx, func() (*rod.Element, bool, error) {
		found, child, err := el.Has(selector)
		return child, found, err
	})
	if err != nil {
		return "", err
	}
	text, err := child.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

const (
	lookupInitialInterval = 5 * time.Millisecond
	lookupMaxInterval     = 25 * time.Millisecond
)

// pollLookup calls lookup until it reports found, returns an error, or ctx
// ends. A lookup that never finds anything returns ctx.Err().
func pollLookup[T any](ctx context.Context, lookup func() (T, bool, error)) (T, error) {
	var (
		v     T
		found bool
	)
	sleeper := utils.BackoffSleeper(lookupInitialInterval, lookupMaxInterval, nil)
	err := utils.Retry(ctx, sleeper, func() (bool, error) {
		var err error
		v, found, err = lookup()
		return found || err != nil, err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw navigation errors into typed ScrapeErrors so
// timeouts stay distinguishable from unreachable targets.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeNavigationTimeout, models.StageNavigating, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeNavigationTimeout, models.StageNavigating, "navigation canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, models.StageNavigating, msg, err)
	}
}
