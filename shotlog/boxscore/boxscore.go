// Package boxscore scrapes shot tables published as HTML pages.
//
// A page is expected to carry a <table class="shots"> whose header cells name
// shot log columns (player_name, SHOT_RESULT, DRIBBLES, ...). Rows that cannot
// be parsed are skipped.
package boxscore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/brensch/shottree/shotlog"
)

const defaultSelector = "table.shots"

// Config holds scraper configuration
type Config struct {
	Selector  string        // CSS selector for the shot table
	UserAgent string        // Sent with every request
	Timeout   time.Duration // Per request
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Selector:  defaultSelector,
		UserAgent: "shottree/1.0 (shot-log-collector)",
		Timeout:   30 * time.Second,
	}
}

// Page is a shot source backed by one HTML page.
type Page struct {
	URL    string
	Config Config
	Client *http.Client
	Logger *slog.Logger
}

func (p Page) Each(ctx context.Context, fn func(shotlog.Shot) error) error {
	cfg := p.Config
	if cfg.Selector == "" {
		cfg = DefaultConfig()
	}
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	shots, skipped, err := Parse(resp.Body, cfg.Selector)
	if err != nil {
		return err
	}
	if skipped > 0 {
		logger.Warn("skipped unparsable shot rows", "url", p.URL, "skipped", skipped)
	}
	return shotlog.SliceSource(shots).Each(ctx, fn)
}

// Parse extracts shots from the first table matching selector.
func Parse(r io.Reader, selector string) ([]shotlog.Shot, int, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, 0, err
	}

	table := doc.Find(selector).First()
	if table.Length() == 0 {
		return nil, 0, fmt.Errorf("no table matches %q", selector)
	}

	var header []string
	table.Find("tr").First().Find("th").Each(func(_ int, s *goquery.Selection) {
		header = append(header, strings.TrimSpace(s.Text()))
	})
	parser, err := shotlog.NewRowParser(header)
	if err != nil {
		return nil, 0, err
	}

	var shots []shotlog.Shot
	skipped := 0
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		record := make([]string, 0, cells.Length())
		cells.Each(func(_ int, c *goquery.Selection) {
			record = append(record, strings.TrimSpace(c.Text()))
		})
		shot, err := parser.Parse(record)
		if err != nil {
			skipped++
			return
		}
		shots = append(shots, shot)
	})
	return shots, skipped, nil
}
