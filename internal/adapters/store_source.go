package adapters

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gocolly/colly"
	"github.com/rs/zerolog/log"

	"mad-scanner/internal/ports"
	"mad-scanner/internal/types"
)

const defaultStoreURL = "https://apkpure.com"
const defaultStoreUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
const defaultStoreTimeout = 5 * time.Minute

// StoreSource scrapes an APK store: search page, first result, details
// download page, then the direct download link.
type StoreSource struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

func NewStoreSource(baseURL string, timeoutSec int) StoreSource {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = defaultStoreURL
	}
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return StoreSource{
		BaseURL:   base,
		UserAgent: defaultStoreUserAgent,
		Timeout:   timeout,
	}
}

func (s StoreSource) Acquire(ctx context.Context, request types.ArtifactRequest, destPath string) error {
	query := strings.TrimSpace(request.Query)
	if query == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("search query is empty")
	}
	searchURL := fmt.Sprintf("%s/search?q=%s&t=app", s.BaseURL, url.QueryEscape(query))
	appURL, err := s.firstResult(ctx, searchURL)
	if err != nil {
		return err
	}
	log.Ctx(ctx).Debug().Str("input", request.InputName).Str("url", appURL).Msg("store result found")

	downloadLink, err := s.downloadLink(ctx, strings.TrimRight(appURL, "/")+"/download?from=details")
	if err != nil {
		return err
	}
	log.Ctx(ctx).Debug().Str("input", request.InputName).Str("url", downloadLink).Msg("download link found")
	return s.download(ctx, downloadLink, destPath)
}

func (s StoreSource) firstResult(ctx context.Context, searchURL string) (string, error) {
	var result string
	collector := s.newCollector()
	collector.OnHTML("dl", func(e *colly.HTMLElement) {
		if result != "" {
			return
		}
		if href := strings.TrimSpace(e.ChildAttr("a", "href")); href != "" {
			result = e.Request.AbsoluteURL(href)
		}
	})
	if err := s.visit(ctx, collector, searchURL); err != nil {
		return "", err
	}
	if result == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no store result for " + searchURL)
	}
	return result, nil
}

func (s StoreSource) downloadLink(ctx context.Context, detailsURL string) (string, error) {
	var link string
	collector := s.newCollector()
	collector.OnHTML("#download_link", func(e *colly.HTMLElement) {
		if link != "" {
			return
		}
		if href := strings.TrimSpace(e.Attr("href")); href != "" {
			link = e.Request.AbsoluteURL(href)
		}
	})
	if err := s.visit(ctx, collector, detailsURL); err != nil {
		return "", err
	}
	if link == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no download link on " + detailsURL)
	}
	return link, nil
}

func (s StoreSource) download(ctx context.Context, link string, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("failed to create artifact directory").
			WithCause(err)
	}
	partPath := destPath + ".part"
	defer os.Remove(partPath)
	var saveErr error
	saved := false
	collector := s.newCollector()
	collector.MaxBodySize = 0
	collector.OnResponse(func(r *colly.Response) {
		saveErr = r.Save(partPath)
		saved = saveErr == nil
	})
	if err := s.visit(ctx, collector, link); err != nil {
		return err
	}
	if saveErr != nil || !saved {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to save artifact").
			WithCause(saveErr)
	}
	if err := os.Rename(partPath, destPath); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to move artifact into place").
			WithCause(err)
	}
	return nil
}

func (s StoreSource) newCollector() *colly.Collector {
	collector := colly.NewCollector(
		colly.UserAgent(s.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(s.Timeout)
	return collector
}

func (s StoreSource) visit(ctx context.Context, collector *colly.Collector, target string) error {
	if err := ctx.Err(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("request canceled").
			WithCause(err)
	}
	if err := collector.Visit(target); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("store request failed: %s: %v", target, err)).
			WithCause(err)
	}
	return nil
}

var _ ports.ArtifactSourcePort = StoreSource{}
