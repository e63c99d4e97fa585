package ilec

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCrawl(t *testing.T) {
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprintf(w, `<table class="list"><tr><th>h</th></tr>
				<tr><td>1</td><td>US</td><td><a href="%[1]s/lake/tahoe">Tahoe</a></td></tr>
				<tr><td>2</td><td>US</td><td><a href="%[1]s/lake/nowhere">Nowhere</a></td></tr>
			</table>`, srvURL)
		case "2":
			fmt.Fprintf(w, `<table class="list"><tr><th>h</th></tr>
				<tr><td>3</td><td>US</td><td><a href="%[1]s/lake/mono">Mono</a></td></tr>
				<tr><td>4</td><td>US</td><td><a href="%[1]s/lake/gone">Gone</a></td></tr>
			</table>`, srvURL)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	})
	mux.HandleFunc("/lake/tahoe", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(lakeHTML))
	})
	mux.HandleFunc("/lake/mono", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.NewReplacer(
			"LAKE TAHOE", "MONO LAKE",
			"39:00-39:12N", "38:00-38:02N",
		).Replace(lakeHTML)))
	})
	mux.HandleFunc("/lake/nowhere", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<h2>NOWHERE</h2>"))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	lakes, err := Crawl(context.Background(), srv.Client(), CrawlOptions{
		ListingURL:  srv.URL + "/list",
		Pages:       3,
		Concurrency: 2,
	})
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}

	if len(lakes) != 2 {
		t.Fatalf("Expected 2 lakes, got %d: %+v", len(lakes), lakes)
	}
	if lakes[0].ID != "1" || lakes[0].Name != "LAKE TAHOE" {
		t.Errorf("unexpected first lake %+v", lakes[0])
	}
	if lakes[1].ID != "2" || lakes[1].Name != "MONO LAKE" {
		t.Errorf("unexpected second lake %+v", lakes[1])
	}
}

func TestCrawlCancelled(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Crawl(ctx, srv.Client(), CrawlOptions{ListingURL: srv.URL}); err == nil {
		t.Error("cancelled crawl should fail")
	}
}
