//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	rediscache "github.com/jsamuelsen/lingo-service/internal/adapters/cache/redis"
	httpadapter "github.com/jsamuelsen/lingo-service/internal/adapters/http"
	"github.com/jsamuelsen/lingo-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/lingo-service/internal/adapters/persistence/memory"
	"github.com/jsamuelsen/lingo-service/internal/app"
	"github.com/jsamuelsen/lingo-service/internal/platform/config"
	"github.com/jsamuelsen/lingo-service/internal/platform/i18n"
	"github.com/jsamuelsen/lingo-service/internal/ports"
)

// stack is the whole service wired in process: in-memory users, a
// miniredis-backed cache and the production router.
type stack struct {
	server *httptest.Server
	redis  *miniredis.Miniredis
	cfg    *config.Config
}

// newStack starts the service. configure may adjust the loaded config
// before anything is built.
func newStack(t testing.TB, configure func(*config.Config)) *stack {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)

	mini := miniredis.RunT(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mini.Addr()

	if configure != nil {
		configure(cfg)
	}

	require.NoError(t, cfg.Validate())

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	fallback := language.MustParse(cfg.I18n.FallbackLocale)
	catalog, err := i18n.LoadCatalog(cfg.I18n.Dir, fallback)
	require.NoError(t, err)

	translator := i18n.NewTranslator(catalog, fallback)

	client := rediscache.NewClient(&cfg.Redis)
	t.Cleanup(func() { _ = client.Close() })

	cache := rediscache.NewUserCache(client, cfg.Redis.TTL)

	registry := ports.NewHealthRegistry()
	require.NoError(t, registry.Register(cache))

	service := app.NewUserService(app.UserServiceConfig{
		Repository: memory.NewUserRepository(),
		Cache:      cache,
		Logger:     logger,
	})

	gin.SetMode(gin.TestMode)
	engine := gin.New()

	routerCfg := httpadapter.NewDefaultRouterConfig(logger, cfg, translator,
		handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "test", time.Now().UTC().Format(time.RFC3339)).WithLocales(fallback.String(), catalog.Locales())))
	routerCfg.UserHandler = handlers.NewUserHandler(service)
	routerCfg.DemoHandler = handlers.NewDemoHandler(translator)
	httpadapter.SetupRouter(engine, routerCfg)

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	return &stack{server: server, redis: mini, cfg: cfg}
}

// errorDocument is the translated failure body.
type errorDocument struct {
	Code     string          `json:"code"`
	Message  string          `json:"message"`
	Children []errorDocument `json:"children"`
}

// do sends a request to the stack. A non-nil body is encoded as JSON.
func (s *stack) do(ctx context.Context, method, path, acceptLanguage string, body any) (*http.Response, []byte, error) {
	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}

		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.server.URL+path, reader)
	if err != nil {
		return nil, nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if acceptLanguage != "" {
		req.Header.Set("Accept-Language", acceptLanguage)
	}

	resp, err := s.server.Client().Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)

	return resp, data, err
}
