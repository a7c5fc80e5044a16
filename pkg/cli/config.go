package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/adapter"
	"github.com/m-mizutani/kioku/pkg/repository"
	"github.com/m-mizutani/kioku/pkg/service/session"
	"github.com/m-mizutani/kioku/pkg/tool"
	"github.com/m-mizutani/kioku/pkg/usecase/agent"
	"github.com/m-mizutani/kioku/pkg/usecase/notes"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// config holds configuration values shared across commands
type config struct {
	// Note store
	dbPath string

	// LLM
	geminiAPIKey    string
	generativeModel string
	embeddingModel  string

	// Agent behavior
	readOnly      bool
	policyDir     string
	quota         int64
	maxPairs      int64
	minSimilarity float64

	configPath string
	logLevel   string
}

// fileConfig is the optional YAML config file shape. Zero values leave the
// flag/env values untouched.
type fileConfig struct {
	GenerativeModel string  `yaml:"generative_model"`
	EmbeddingModel  string  `yaml:"embedding_model"`
	PolicyDir       string  `yaml:"policy_dir"`
	Quota           int64   `yaml:"quota"`
	MaxPairs        int     `yaml:"max_pairs"`
	MinSimilarity   float64 `yaml:"min_similarity"`
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "db",
			Aliases:     []string{"d"},
			Usage:       "Path to the SQLite note database (empty for in-memory)",
			Sources:     cli.EnvVars("KIOKU_DB"),
			Destination: &cfg.dbPath,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML config file",
			Sources:     cli.EnvVars("KIOKU_CONFIG"),
			Destination: &cfg.configPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("KIOKU_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key",
			Sources:     cli.EnvVars("GEMINI_API_KEY"),
			Destination: &cfg.geminiAPIKey,
		},
		&cli.StringFlag{
			Name:        "generative-model",
			Usage:       "Generative model name",
			Value:       "gemini-2.5-flash",
			Sources:     cli.EnvVars("KIOKU_GENERATIVE_MODEL"),
			Destination: &cfg.generativeModel,
		},
		&cli.StringFlag{
			Name:        "embedding-model",
			Usage:       "Embedding model name",
			Value:       "gemini-embedding-001",
			Sources:     cli.EnvVars("KIOKU_EMBEDDING_MODEL"),
			Destination: &cfg.embeddingModel,
		},
	}
}

// agentFlags returns flags for agent behavior with destination config
func agentFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "read-only",
			Usage:       "Exclude mutation tools from the active tool set",
			Sources:     cli.EnvVars("KIOKU_READ_ONLY"),
			Destination: &cfg.readOnly,
		},
		&cli.StringFlag{
			Name:        "policy",
			Usage:       "Directory of Rego tool policy files",
			Sources:     cli.EnvVars("KIOKU_POLICY_DIR"),
			Destination: &cfg.policyDir,
		},
		&cli.IntFlag{
			Name:        "quota",
			Usage:       "Per-session input token quota",
			Value:       session.DefaultQuota,
			Sources:     cli.EnvVars("KIOKU_QUOTA"),
			Destination: &cfg.quota,
		},
		&cli.IntFlag{
			Name:        "max-pairs",
			Usage:       "Conversation memory cap in turn pairs",
			Value:       session.DefaultMaxPairs,
			Sources:     cli.EnvVars("KIOKU_MAX_PAIRS"),
			Destination: &cfg.maxPairs,
		},
		&cli.FloatFlag{
			Name:        "min-similarity",
			Usage:       "Similarity floor for search results",
			Value:       0,
			Sources:     cli.EnvVars("KIOKU_MIN_SIMILARITY"),
			Destination: &cfg.minSimilarity,
		},
	}
}

// load merges the optional YAML config file into cfg
func (cfg *config) load() error {
	if cfg.configPath == "" {
		return nil
	}

	data, err := os.ReadFile(cfg.configPath)
	if err != nil {
		return goerr.Wrap(err, "failed to read config file", goerr.V("path", cfg.configPath))
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return goerr.Wrap(err, "failed to parse config file", goerr.V("path", cfg.configPath))
	}

	if fc.GenerativeModel != "" {
		cfg.generativeModel = fc.GenerativeModel
	}
	if fc.EmbeddingModel != "" {
		cfg.embeddingModel = fc.EmbeddingModel
	}
	if fc.PolicyDir != "" {
		cfg.policyDir = fc.PolicyDir
	}
	if fc.Quota > 0 {
		cfg.quota = fc.Quota
	}
	if fc.MaxPairs > 0 {
		cfg.maxPairs = int64(fc.MaxPairs)
	}
	if fc.MinSimilarity > 0 {
		cfg.minSimilarity = fc.MinSimilarity
	}
	return nil
}

// newRepository creates the note store: SQLite when a path is configured,
// in-memory otherwise
func (cfg *config) newRepository() (repository.Repository, error) {
	if cfg.dbPath == "" {
		return repository.NewMemory(), nil
	}

	repo, err := repository.NewSQLite(cfg.dbPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open note store")
	}
	return repo, nil
}

// newLLM creates the Gemini adapter
func (cfg *config) newLLM(ctx context.Context) (adapter.LLM, error) {
	if cfg.geminiAPIKey == "" {
		return nil, goerr.New("gemini-api-key is required")
	}

	llm, err := adapter.NewGemini(ctx, cfg.geminiAPIKey,
		adapter.WithGenerativeModel(cfg.generativeModel),
		adapter.WithEmbeddingModel(cfg.embeddingModel),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM adapter")
	}
	return llm, nil
}

// newExecutor builds the policy-filtered tool executor
func (cfg *config) newExecutor(ctx context.Context, repo repository.Repository, llm adapter.LLM) (*tool.Executor, error) {
	policy, err := tool.NewPolicy(ctx, cfg.policyDir, cfg.readOnly)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load tool policy")
	}

	registry := tool.NewRegistry(ctx, policy)
	return tool.NewExecutor(repo, llm, registry,
		tool.WithMinSimilarity(cfg.minSimilarity),
	), nil
}

// newSessions creates the session registry
func (cfg *config) newSessions() *session.Registry {
	return session.NewRegistry(
		session.WithQuota(cfg.quota),
		session.WithMaxPairs(int(cfg.maxPairs)),
	)
}

// newAgent wires the full orchestrator for one conversation
func (cfg *config) newAgent(ctx context.Context) (*agent.Agent, *session.Registry, error) {
	repo, err := cfg.newRepository()
	if err != nil {
		return nil, nil, err
	}

	llm, err := cfg.newLLM(ctx)
	if err != nil {
		return nil, nil, err
	}

	executor, err := cfg.newExecutor(ctx, repo, llm)
	if err != nil {
		return nil, nil, err
	}

	sessions := cfg.newSessions()
	return agent.New(agent.NewInput{
		LLM:      llm,
		Executor: executor,
		Sessions: sessions,
	}), sessions, nil
}

// newNotes wires the note management usecase
func (cfg *config) newNotes(ctx context.Context) (*notes.UseCase, error) {
	repo, err := cfg.newRepository()
	if err != nil {
		return nil, err
	}

	llm, err := cfg.newLLM(ctx)
	if err != nil {
		return nil, err
	}

	return notes.New(repo, llm), nil
}

// newLocalNotes wires the note usecase without the LLM, for commands that
// never touch embeddings
func (cfg *config) newLocalNotes() (*notes.UseCase, error) {
	repo, err := cfg.newRepository()
	if err != nil {
		return nil, err
	}
	return notes.New(repo, nil), nil
}
