//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloo-solutions/dupefinder/internal/api/handlers"
	"github.com/cloo-solutions/dupefinder/internal/cache"
	"github.com/cloo-solutions/dupefinder/internal/openai"
	"github.com/cloo-solutions/dupefinder/internal/repository"
	"github.com/cloo-solutions/dupefinder/internal/retail"
	"github.com/cloo-solutions/dupefinder/internal/server"
	"github.com/cloo-solutions/dupefinder/internal/service"
	"github.com/cloo-solutions/dupefinder/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
	gopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

const (
	// outageQuery makes the fake chat API fail the completion
	outageQuery  = "upstream outage serum"
	extractReply = `{"productName":"Pillow Talk","brand":"Charlotte Tilbury","category":"lipstick","isMakeup":true,"confidence":90}`
	compareReply = "```json\n" + `{"similarityScore":82,"keyMatches":["Dimethicone"],"keyDifferences":["Fragrance"],"overallAnalysis":"Close formulas.","potentialIssues":[]}` + "\n```"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	Redis        *miniredis.Miniredis
	LLM          *httptest.Server
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	BinaryDir    string
	HTTPClient   *http.Client
}

// SetupE2EEnv starts Postgres, an in-memory Redis, a fake chat completion
// API and the HTTP server wired the way serve wires it.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pool := testutil.SetupDatabase(ctx, t, "../../migrations")
	mr := miniredis.RunT(t)
	llm := httptest.NewServer(fakeChatAPI(t))

	env := &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		Redis:      mr,
		LLM:        llm,
		Pool:       pool,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	env.ServerURL, env.ServerCloser = env.startServer()
	return env
}

// Cleanup stops the server, the fake chat API and removes the CLI build.
// The database container and pool are released by t.Cleanup.
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.LLM != nil {
		e.LLM.Close()
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

// Seed loads the built-in catalog.
func (e *E2ETestEnv) Seed() *service.SeedResult {
	data, err := service.DefaultSeedData()
	if err != nil {
		e.T.Fatalf("failed to load seed data: %v", err)
	}
	catalog := service.NewCatalogServiceWithTx(
		repository.NewProductRepository(e.Pool),
		repository.NewDupeRepository(e.Pool),
		repository.NewTxRunner(e.Pool),
		zaptest.NewLogger(e.T),
	)
	result, err := catalog.Seed(e.Ctx, data)
	if err != nil {
		e.T.Fatalf("failed to seed catalog: %v", err)
	}
	return result
}

// ProductID looks up a seeded product by exact name.
func (e *E2ETestEnv) ProductID(name string) string {
	var id string
	if err := e.Pool.QueryRow(e.Ctx, "SELECT id FROM products WHERE name = $1", name).Scan(&id); err != nil {
		e.T.Fatalf("failed to find product %q: %v", name, err)
	}
	return id
}

// BuildCLI builds the dupefinder binary
func (e *E2ETestEnv) BuildCLI() {
	tmpDir, err := os.MkdirTemp("", "dupefinder-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, "dupefinder"), "./cmd/dupefinder")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build dupefinder: %v\n%s", err, out)
	}
}

// RunCLI runs the dupefinder CLI against the test server
func (e *E2ETestEnv) RunCLI(args ...string) (string, error) {
	args = append([]string{"--api-url", e.ServerURL}, args...)
	cmd := exec.Command(filepath.Join(e.BinaryDir, "dupefinder"), args...)
	cmd.Env = append(os.Environ(), "XDG_CONFIG_HOME="+e.T.TempDir(), "HOME="+e.T.TempDir())
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// Get performs a GET and decodes the JSON body into out
func (e *E2ETestEnv) Get(path string, out interface{}) (int, error) {
	return e.doRequest(http.MethodGet, path, nil, out)
}

// Post performs a POST with a JSON body and decodes the JSON reply into out
func (e *E2ETestEnv) Post(path string, body, out interface{}) (int, error) {
	return e.doRequest(http.MethodPost, path, body, out)
}

func (e *E2ETestEnv) doRequest(method, path string, body, out interface{}) (int, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(e.Ctx, method, e.ServerURL+path, reqBody)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s: %w", raw, err)
		}
	}
	return resp.StatusCode, nil
}

func (e *E2ETestEnv) startServer() (string, func()) {
	logger := zaptest.NewLogger(e.T, zaptest.Level(zap.WarnLevel))

	rdb, err := cache.NewRedisClient(e.Ctx, "redis://"+e.Redis.Addr())
	if err != nil {
		e.T.Fatalf("failed to connect to redis: %v", err)
	}

	productRepo := repository.NewProductRepository(e.Pool)
	dupeRepo := repository.NewDupeRepository(e.Pool)
	searchRepo := repository.NewSearchLogRepository(e.Pool)

	month := time.Date(time.Now().UTC().Year(), time.Now().UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	if _, err := searchRepo.EnsureMonthlyPartition(e.Ctx, month); err != nil {
		e.T.Fatalf("failed to create search partition: %v", err)
	}

	aiClient := openai.NewClientWithConfig(openai.Config{
		APIKey:  "sk-test",
		BaseURL: e.LLM.URL + "/v1",
	}, logger)
	scraper := retail.NewIngredientScraper(retail.ScraperConfig{Timeout: 2 * time.Second}, logger)

	priceSvc := service.NewPriceService(productRepo, retail.DefaultStaticSources(), cache.NewRedisPriceCache(rdb, time.Hour), logger)
	resolver := service.NewResolver(productRepo, scraper, priceSvc, logger)
	dupeSvc := service.NewDupeService(productRepo, dupeRepo, service.NewOverlapScorer(), logger)
	extractor := service.NewSearchExtractor(aiClient, false, logger)

	router := server.NewRouter(server.RouterConfig{
		Logger:             logger,
		CORSAllowedOrigins: []string{"*"},
		SearchHandler:      handlers.NewSearchHandler(service.NewSearchService(extractor, resolver, dupeSvc, searchRepo, logger), logger),
		DupesHandler:       handlers.NewDupesHandler(service.NewChatService(resolver, dupeSvc, service.NewCuratedCatalog(), searchRepo, logger), logger),
		CompareHandler:     handlers.NewCompareHandler(service.NewCompareService(productRepo, dupeRepo, aiClient, logger), logger),
		PricesHandler:      handlers.NewPricesHandler(priceSvc, logger),
		ProductHandler:     handlers.NewProductHandler(service.NewProductService(productRepo), dupeSvc, logger),
		DiagnosticsHandler: handlers.NewDiagnosticsHandler(handlers.DiagnosticsEnv{
			DatabaseConfigured: true,
			OpenAIConfigured:   true,
			RedisConfigured:    true,
			Environment:        "test",
		}, e.Pool, productRepo, searchRepo, aiClient, logger),
	})

	srv := httptest.NewServer(router)
	return srv.URL, func() {
		srv.Close()
		_ = rdb.Close()
	}
}

// fakeChatAPI answers chat completions with canned extraction or comparison
// replies, chosen by the system prompt.
func fakeChatAPI(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req gopenai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Logf("fake chat api: bad request: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Messages) > 1 && strings.Contains(req.Messages[1].Content, outageQuery) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
			return
		}
		reply := extractReply
		if len(req.Messages) > 0 && strings.Contains(req.Messages[0].Content, "ingredient analysis") {
			reply = compareReply
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(gopenai.ChatCompletionResponse{
			ID:     "chatcmpl-e2e",
			Object: "chat.completion",
			Model:  req.Model,
			Choices: []gopenai.ChatCompletionChoice{{
				Index:        0,
				Message:      gopenai.ChatCompletionMessage{Role: gopenai.ChatMessageRoleAssistant, Content: reply},
				FinishReason: gopenai.FinishReasonStop,
			}},
			Usage: gopenai.Usage{PromptTokens: 10, CompletionTokens: 10, TotalTokens: 20},
		})
	})
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(gopenai.ModelsList{Models: []gopenai.Model{{ID: "gpt-4o"}}})
	})
	return mux
}
