package sync

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"

	"github.com/RedVerrask/Discord-bot-sub000/pkg/crafting"
)

// DefaultRowSelector matches the rows of a recipe table.
const DefaultRowSelector = "table tr"

// ScrapeOptions configure a Scraper.
type ScrapeOptions struct {
	URLs              []string      `mapstructure:"urls"`
	RowSelector       string        `mapstructure:"row_selector"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond int           `mapstructure:"requests_per_second"`
	Workers           int           `mapstructure:"workers"`
}

// Scraper fetches recipe tables from wiki-style pages. Each matched row
// holds the recipe name (optionally linked), the profession and the level
// in its first three cells.
type Scraper struct {
	opts   ScrapeOptions
	client *resty.Client
	rl     ratelimit.Limiter
	logger *zap.Logger
}

// NewScraper creates a scraper. Zero options select one request per
// second, two workers and a 30 second timeout.
func NewScraper(opts ScrapeOptions, logger *zap.Logger) *Scraper {
	if opts.RowSelector == "" {
		opts.RowSelector = DefaultRowSelector
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 1
	}
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second).
		SetHeader("User-Agent", "crafting-bot/0.1 (+catalog sync)").
		SetHeader("Accept", "text/html,application/xhtml+xml")

	return &Scraper{
		opts:   opts,
		client: client,
		rl:     ratelimit.New(opts.RequestsPerSecond),
		logger: logger,
	}
}

// Close releases the HTTP client.
func (s *Scraper) Close() error {
	return s.client.Close()
}

// Scrape fetches all configured pages concurrently and returns their
// recipes in page order. Any page failure fails the scrape.
func (s *Scraper) Scrape(ctx context.Context) ([]crafting.RecipeRecord, error) {
	if len(s.opts.URLs) == 0 {
		return nil, fmt.Errorf("no scrape URLs configured")
	}

	pages := make([][]crafting.RecipeRecord, len(s.opts.URLs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for i, pageURL := range s.opts.URLs {
		g.Go(func() error {
			html, err := s.fetchHTML(ctx, pageURL)
			if err != nil {
				return err
			}
			records, err := ParseRecipeTable(html, pageURL, s.opts.RowSelector)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", pageURL, err)
			}
			s.logger.Debug("scraped page", zap.String("url", pageURL), zap.Int("recipes", len(records)))
			pages[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []crafting.RecipeRecord
	for _, p := range pages {
		out = append(out, p...)
	}
	return out, nil
}

func (s *Scraper) fetchHTML(ctx context.Context, pageURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("request cancelled: %w", err)
	}
	// Take cannot be interrupted; recheck once it returns.
	s.rl.Take()
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("request cancelled: %w", err)
	}

	resp, err := s.client.R().
		SetContext(ctx).
		Get(pageURL)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return "", fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("fetching %s: HTTP %d", pageURL, resp.StatusCode())
	}
	return resp.String(), nil
}

// ParseRecipeTable extracts recipes from the rows matched by rowSelector.
// Header rows and rows without a name are skipped. Relative links are
// resolved against pageURL.
func ParseRecipeTable(html, pageURL, rowSelector string) ([]crafting.RecipeRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	base, _ := url.Parse(pageURL)

	var records []crafting.RecipeRecord
	doc.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		nameCell := cells.Eq(0)
		rec := crafting.RecipeRecord{
			Name:       cleanText(nameCell.Text()),
			Profession: cleanText(cells.Eq(1).Text()),
			Level:      cleanText(cells.Eq(2).Text()),
		}
		if rec.Name == "" {
			return
		}
		if href, ok := nameCell.Find("a[href]").First().Attr("href"); ok {
			rec.URL = resolveLink(base, href)
		}
		records = append(records, rec)
	})
	return records, nil
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
