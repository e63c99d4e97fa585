package ilec

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/woozymasta/lakemap/internal/lake"

	"github.com/rs/zerolog/log"
)

// DefaultListingURL lists the lakes with fish species records.
const DefaultListingURL = "https://wldb.ilec.or.jp/Search/listdataitem/199"

// CrawlOptions controls a crawl.
type CrawlOptions struct {
	ListingURL  string
	Pages       int
	Concurrency int
}

// Crawl fetches every listing page, then every lake page, and returns the
// lakes with usable coordinates in listing order. IDs are assigned from 1.
func Crawl(ctx context.Context, client *http.Client, opts CrawlOptions) ([]lake.Lake, error) {
	if opts.ListingURL == "" {
		opts.ListingURL = DefaultListingURL
	}
	if opts.Pages <= 0 {
		opts.Pages = 1
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}

	var links []string
	for page := 1; page <= opts.Pages; page++ {
		url := opts.ListingURL + "?page=" + strconv.Itoa(page)
		pageLinks, err := fetchListing(ctx, client, url)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Error().Err(err).Int("page", page).Msg("Failed to retrieve listing page")
			continue
		}
		log.Debug().Int("page", page).Int("links", len(pageLinks)).Msg("Listing page parsed")
		links = append(links, pageLinks...)
	}

	log.Info().Int("links", len(links)).Msg("Lake links collected")

	pages := fetchPages(ctx, client, links, opts.Concurrency)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lakes := make([]lake.Lake, 0, len(pages))
	for i, p := range pages {
		if p == nil {
			continue
		}
		l, ok := p.Lake(lake.ID(strconv.Itoa(len(lakes) + 1)))
		if !ok {
			log.Warn().Str("url", links[i]).Str("name", p.Name).Msg("Skipping lake without coordinates")
			continue
		}
		lakes = append(lakes, l)
	}

	return lakes, nil
}

// fetchPages downloads and parses the lake pages with a bounded worker pool.
// The result keeps the order of links; failed pages are nil.
func fetchPages(ctx context.Context, client *http.Client, links []string, concurrency int) []*Page {
	pages := make([]*Page, len(links))
	jobs := make(chan int)

	go func() {
		defer close(jobs)
		for i := range links {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				p, err := fetchLake(ctx, client, links[i])
				if err != nil {
					log.Error().Err(err).Str("url", links[i]).Msg("Failed to retrieve lake page")
					continue
				}
				log.Trace().Int("n", i).Str("url", links[i]).Str("name", p.Name).Msg("Lake page parsed")
				pages[i] = &p
			}
		}()
	}
	wg.Wait()

	return pages
}

func fetchListing(ctx context.Context, client *http.Client, url string) ([]string, error) {
	body, err := get(ctx, client, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	return ParseListing(body)
}

func fetchLake(ctx context.Context, client *http.Client, url string) (Page, error) {
	body, err := get(ctx, client, url)
	if err != nil {
		return Page{}, err
	}
	defer func() { _ = body.Close() }()

	return ParseLake(body)
}

func get(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	return resp.Body, nil
}
