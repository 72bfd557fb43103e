package retail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingArchiver struct {
	urls   []string
	bodies [][]byte
	err    error
}

func (a *recordingArchiver) Archive(_ context.Context, pageURL string, body []byte) error {
	a.urls = append(a.urls, pageURL)
	a.bodies = append(a.bodies, body)
	return a.err
}

func htmlServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIngredientScraper_SelectorOrder(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "ingredients list class",
			body: `<div class="ingredients-list"> Water, Glycerin ,, Dimethicone </div><div id="ingredients">Ignored</div>`,
			want: []string{"Water", "Glycerin", "Dimethicone"},
		},
		{
			name: "falls back to id",
			body: `<div class="ingredients-list">   </div><div id="ingredients">Shea Butter, Water</div>`,
			want: []string{"Shea Butter", "Water"},
		},
		{
			name: "falls back to data attribute",
			body: `<section data-ingredients="x">Squalane, Water, Water</section>`,
			want: []string{"Squalane", "Water", "Water"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := htmlServer(t, http.StatusOK, "<html><body>"+tt.body+"</body></html>")
			scraper := NewIngredientScraper(ScraperConfig{}, zaptest.NewLogger(t))

			got, err := scraper.ExtractIngredients(context.Background(), srv.URL)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIngredientScraper_SendsHeaders(t *testing.T) {
	var userAgent, language string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		language = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><p id="ingredients">Water</p></body></html>`)
	}))
	defer srv.Close()

	_, err := NewIngredientScraper(ScraperConfig{}, nil).ExtractIngredients(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, userAgent)
	assert.Equal(t, "en-US,en;q=0.9", language)
}

func TestIngredientScraper_NotFoundArchivesPage(t *testing.T) {
	page := "<html><body><p>No ingredients here</p></body></html>"
	srv := htmlServer(t, http.StatusOK, page)
	archiver := &recordingArchiver{err: errors.New("bucket unavailable")}
	scraper := NewIngredientScraper(ScraperConfig{Archiver: archiver}, zaptest.NewLogger(t))

	got, err := scraper.ExtractIngredients(context.Background(), srv.URL)

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrIngredientsNotFound)
	require.Len(t, archiver.urls, 1)
	assert.Equal(t, srv.URL, archiver.urls[0])
	assert.Contains(t, string(archiver.bodies[0]), "No ingredients here")
}

func TestIngredientScraper_FetchFailure(t *testing.T) {
	srv := htmlServer(t, http.StatusNotFound, "<html></html>")
	archiver := &recordingArchiver{}
	scraper := NewIngredientScraper(ScraperConfig{Archiver: archiver}, nil)

	_, err := scraper.ExtractIngredients(context.Background(), srv.URL)

	assert.ErrorIs(t, err, domain.ErrPageFetchFailed)
	assert.Empty(t, archiver.urls)
}

func TestIngredientScraper_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewIngredientScraper(ScraperConfig{}, nil).ExtractIngredients(ctx, "http://127.0.0.1:1")

	assert.ErrorIs(t, err, domain.ErrPageFetchFailed)
}

func TestIngredientScraper_CancelDuringFetch(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	_, err := NewIngredientScraper(ScraperConfig{Timeout: 5 * time.Second}, nil).ExtractIngredients(ctx, srv.URL)

	assert.ErrorIs(t, err, domain.ErrPageFetchFailed)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSplitIngredients(t *testing.T) {
	assert.Equal(t, []string{}, SplitIngredients(""))
	assert.Equal(t, []string{}, SplitIngredients(" , ,"))
	assert.Equal(t, []string{"Aqua", "Parfum"}, SplitIngredients("Aqua,Parfum,"))
}
