package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mmilger/optifolio/internal/clients/gemini"
	"github.com/mmilger/optifolio/internal/clients/yahoo"
	"github.com/mmilger/optifolio/internal/common"
	"github.com/mmilger/optifolio/internal/interfaces"
	"github.com/mmilger/optifolio/internal/models"
	"github.com/mmilger/optifolio/internal/services/advisor"
	"github.com/mmilger/optifolio/internal/services/enrich"
	"github.com/mmilger/optifolio/internal/services/rates"
)

// ErrGeminiNotConfigured is returned by AI operations when no API key was
// resolved at startup.
var ErrGeminiNotConfigured = fmt.Errorf("gemini API key not configured")

// App holds all initialized services and clients. It is the shared core used
// by cmd/optifolio-server and is the entry point for embedding callers.
type App struct {
	Config         *common.Config
	Logger         *common.Logger
	YahooClient    interfaces.MarketDataClient
	GeminiClient   interfaces.GenAIClient
	RatesService   interfaces.RatesService
	EnrichService  interfaces.EnrichmentService
	AdvisorService interfaces.AdvisorService
	StartupTime    time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, clients, and services. configPath may be
// empty, in which case OPTIFOLIO_CONFIG and the binary directory are checked.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	if configPath == "" {
		configPath = os.Getenv("OPTIFOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "optifolio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/optifolio.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	yahooClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithLogger(logger),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
	)

	a := &App{
		Config:      config,
		Logger:      logger,
		YahooClient: yahooClient,
		StartupTime: startupStart,
	}

	a.RatesService = rates.NewService(yahooClient, logger)
	a.EnrichService = enrich.NewService(yahooClient, a.RatesService, logger)

	if config.Clients.Gemini.APIKey != "" {
		geminiClient, err := gemini.NewClient(context.Background(), config.Clients.Gemini.APIKey,
			gemini.WithLogger(logger),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			a.GeminiClient = geminiClient
			a.AdvisorService = advisor.NewService(geminiClient, modelPool(config), logger)
		}
	} else {
		logger.Warn().Msg("Gemini API key not configured - AI features will be unavailable")
	}

	logger.Info().
		Str("base_currency", config.BaseCurrency).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// modelPool returns the fallback pool with the configured default model first.
func modelPool(config *common.Config) []string {
	pool := config.Clients.Gemini.ModelPool
	def := config.Clients.Gemini.Model
	if def == "" || (len(pool) > 0 && pool[0] == def) {
		return pool
	}
	out := []string{def}
	for _, m := range pool {
		if m != def {
			out = append(out, m)
		}
	}
	return out
}

// EnrichPortfolio resolves live prices, names, and FX for the given positions
// against the configured base currency.
func (a *App) EnrichPortfolio(ctx context.Context, positions []models.Position) []models.EnrichedPosition {
	return a.EnrichService.Enrich(ctx, positions, a.Config.BaseCurrency)
}

// BuildSituationReport enriches the positions and renders the deterministic
// text snapshot used as model grounding. It requires no AI access.
func (a *App) BuildSituationReport(ctx context.Context, positions []models.Position, prefs models.Preferences, budget float64) string {
	enriched := a.EnrichPortfolio(ctx, positions)
	return advisor.BuildReport(enriched, prefs, budget, a.Config.BaseCurrency)
}

// GetRecommendation enriches the positions and asks the model pool for a
// rebalancing recommendation. Pool exhaustion comes back as displayable text,
// not as an error.
func (a *App) GetRecommendation(ctx context.Context, positions []models.Position, prefs models.Preferences, budget float64, suggestNew bool, preferredModel string) (string, error) {
	if a.AdvisorService == nil {
		return "", ErrGeminiNotConfigured
	}
	enriched := a.EnrichPortfolio(ctx, positions)
	return a.AdvisorService.Recommend(ctx, interfaces.RecommendRequest{
		Enriched:       enriched,
		Preferences:    prefs,
		Budget:         budget,
		BaseCurrency:   a.Config.BaseCurrency,
		SuggestNew:     suggestNew,
		PreferredModel: preferredModel,
	})
}

// ScanPortfolioImage reads a screenshot from disk and extracts positions from
// it. The MIME type is sniffed from the file contents, not the extension.
func (a *App) ScanPortfolioImage(ctx context.Context, path string, preferredModel string) (*models.ScanResult, error) {
	if a.AdvisorService == nil {
		return nil, ErrGeminiNotConfigured
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%s is not an image (detected %s)", path, mimeType)
	}

	return a.AdvisorService.ScanImage(ctx, models.ImageData{MIMEType: mimeType, Data: data}, preferredModel)
}

// ChatAboutRecommendation continues the conversation about an earlier
// recommendation. The caller owns the history and must append both the
// message and the returned reply after each turn.
func (a *App) ChatAboutRecommendation(ctx context.Context, req interfaces.ChatRequest) (string, error) {
	if a.AdvisorService == nil {
		return "", ErrGeminiNotConfigured
	}
	return a.AdvisorService.Chat(ctx, req)
}

// ListModels returns the generation-capable model names visible to the
// configured API key.
func (a *App) ListModels(ctx context.Context) ([]string, error) {
	if a.GeminiClient == nil {
		return nil, ErrGeminiNotConfigured
	}
	return a.GeminiClient.ListModels(ctx)
}

// ValidateAPIKey checks a candidate Gemini API key by listing models with it.
// It does not touch the App's own client.
func (a *App) ValidateAPIKey(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("api key is empty")
	}

	client, err := gemini.NewClient(ctx, key, gemini.WithLogger(a.Logger))
	if err != nil {
		return fmt.Errorf("failed to initialize client: %w", err)
	}

	names, err := client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("key rejected: %w", err)
	}
	if len(names) == 0 {
		return fmt.Errorf("key accepted but no generation-capable models are visible")
	}
	return nil
}
