package adapters

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"mad-scanner/internal/ports"
	"mad-scanner/internal/types"
)

const firstResultScript = `(function() {
	const link = document.querySelector('dl a[href]');
	return link ? link.href : "";
})()`

const downloadLinkScript = `(function() {
	const link = document.querySelector('#download_link');
	return link && link.href ? link.href : "";
})()`

// BrowserStoreSource walks the same store pages as StoreSource through a
// headless browser, for stores that render their result lists with
// JavaScript. The artifact itself is fetched with the plain collector.
type BrowserStoreSource struct {
	Store    StoreSource
	ExecPath string
}

func NewBrowserStoreSource(baseURL string, timeoutSec int, execPath string) BrowserStoreSource {
	return BrowserStoreSource{
		Store:    NewStoreSource(baseURL, timeoutSec),
		ExecPath: strings.TrimSpace(execPath),
	}
}

func (s BrowserStoreSource) Acquire(ctx context.Context, request types.ArtifactRequest, destPath string) error {
	query := strings.TrimSpace(request.Query)
	if query == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("search query is empty")
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(s.Store.UserAgent),
		chromedp.Flag("headless", true),
	)
	if s.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(s.ExecPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, s.Store.Timeout)
	defer cancelTimeout()

	searchURL := fmt.Sprintf("%s/search?q=%s&t=app", s.Store.BaseURL, url.QueryEscape(query))
	appURL, err := s.evaluate(browserCtx, searchURL, firstResultScript)
	if err != nil {
		return err
	}
	if appURL == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no store result for " + searchURL)
	}
	log.Ctx(ctx).Debug().Str("input", request.InputName).Str("url", appURL).Msg("store result found")

	detailsURL := strings.TrimRight(appURL, "/") + "/download?from=details"
	link, err := s.evaluate(browserCtx, detailsURL, downloadLinkScript)
	if err != nil {
		return err
	}
	if link == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no download link on " + detailsURL)
	}
	return s.Store.download(ctx, link, destPath)
}

func (s BrowserStoreSource) evaluate(ctx context.Context, target string, script string) (string, error) {
	var value string
	err := chromedp.Run(ctx,
		chromedp.Navigate(target),
		chromedp.Evaluate(script, &value),
	)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("browser request failed: %s: %v", target, err)).
			WithCause(err)
	}
	return strings.TrimSpace(value), nil
}

var _ ports.ArtifactSourcePort = BrowserStoreSource{}
