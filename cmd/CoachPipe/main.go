package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/BTreeMap/CoachPipe/internal/api"
	"github.com/BTreeMap/CoachPipe/internal/genai"
	"github.com/BTreeMap/CoachPipe/internal/lockfile"
	"github.com/BTreeMap/CoachPipe/internal/retrieval"
	"github.com/BTreeMap/CoachPipe/internal/session"
	"github.com/BTreeMap/CoachPipe/internal/smarteval"
	"github.com/BTreeMap/CoachPipe/internal/store"
	"github.com/BTreeMap/CoachPipe/internal/util"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for CoachPipe state data
	DefaultStateDir = "/var/lib/coachpipe"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "coachpipe.db"
	// DefaultIndexFileName is the embedded history index filename
	DefaultIndexFileName = "coachpipe_index.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Ensure required directories exist
	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	// A file-backed store must not be shared between instances.
	if store.DetectDSNType(*flags.dbDSN) == "sqlite" {
		lock, err := lockfile.AcquireLock(filepath.Dir(*flags.dbDSN))
		if err != nil {
			slog.Error("Failed to acquire state directory lock", "error", err)
			os.Exit(1)
		}
		defer lock.Release()
	}

	st, err := buildStore(flags)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	client := buildGenAIClient(flags)

	var runnerOpts []session.RunnerOption
	if index := buildHistoryIndex(flags, client); index != nil {
		defer index.Close()
		runnerOpts = append(runnerOpts, session.WithHistoryIndex(index))
	}
	runner := session.NewRunner(st, buildEvaluator(client), runnerOpts...)

	if *flags.interactive {
		if err := runInteractive(runner, *flags.uid, *flags.sessionNum); err != nil {
			slog.Error("Interactive session failed", "error", err)
			os.Exit(1)
		}
		return
	}

	slog.Info("Bootstrapping CoachPipe API")
	server := api.NewServer(runner, st, buildAPIOptions(flags)...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		slog.Error("CoachPipe failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("CoachPipe exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL string
	StateDir    string
	OpenAIKey   string
	OpenAIModel string
	APIAddr     string
}

// Flags holds command line flag values
type Flags struct {
	stateDir    *string
	dbDSN       *string
	openaiKey   *string
	openaiModel *string
	apiAddr     *string
	interactive *bool
	uid         *string
	sessionNum  *int
}

// initializeLogger sets up structured logging; COACHPIPE_DEBUG enables debug level
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("COACHPIPE_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		StateDir:    util.EnvOrDefault("COACHPIPE_STATE_DIR", DefaultStateDir),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel: os.Getenv("OPENAI_MODEL"),
		APIAddr:     os.Getenv("API_ADDR"),
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"COACHPIPE_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"OPENAI_MODEL", config.OpenAIModel,
		"API_ADDR", config.APIAddr)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:    flag.String("state-dir", config.StateDir, "state directory for CoachPipe data (overrides $COACHPIPE_STATE_DIR)"),
		dbDSN:       flag.String("db-dsn", config.DatabaseURL, "database DSN for the session store (overrides $DATABASE_URL)"),
		openaiKey:   flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		openaiModel: flag.String("openai-model", config.OpenAIModel, "OpenAI chat model for goal evaluation (overrides $OPENAI_MODEL)"),
		apiAddr:     flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		interactive: flag.Bool("interactive", false, "run an interactive stdin session instead of the API server"),
		uid:         flag.String("uid", "", "participant uid for interactive mode (empty mints a new one)"),
		sessionNum:  flag.Int("session", 1, "session number for interactive mode (1-4)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"interactive", *flags.interactive,
		"session", *flags.sessionNum)

	// Update database DSN if not explicitly set but state directory is provided
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if store.DetectDSNType(*flags.dbDSN) == "sqlite" {
		stateDir := filepath.Dir(*flags.dbDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
	}
	return nil
}

// buildStore constructs the session store from the configured DSN.
func buildStore(flags Flags) (store.Store, error) {
	if *flags.dbDSN == "" {
		slog.Debug("No database DSN provided, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
		return store.NewPostgresStore(store.WithPostgresDSN(*flags.dbDSN))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", *flags.dbDSN)
	return store.NewSQLiteStore(store.WithSQLiteDSN(*flags.dbDSN))
}

// buildGenAIClient constructs the OpenAI client, or returns nil when no
// API key is configured.
func buildGenAIClient(flags Flags) *genai.Client {
	if *flags.openaiKey == "" {
		slog.Warn("No OpenAI API key configured, goal evaluation uses the heuristic only")
		return nil
	}

	genaiOpts := []genai.Option{genai.WithAPIKey(*flags.openaiKey)}
	if *flags.openaiModel != "" {
		genaiOpts = append(genaiOpts, genai.WithModel(*flags.openaiModel))
	}
	client, err := genai.NewClient(genaiOpts...)
	if err != nil {
		slog.Error("Failed to initialize GenAI client, falling back to heuristic evaluation", "error", err)
		return nil
	}
	return client
}

// buildEvaluator picks the goal evaluator: LLM-backed when a client is
// available, heuristic otherwise.
func buildEvaluator(client *genai.Client) smarteval.Evaluator {
	if client == nil {
		return smarteval.HeuristicEvaluator{}
	}
	return smarteval.NewLLMEvaluator(client)
}

// buildHistoryIndex opens the embedded history index next to the SQLite
// store. It needs the embedding client, so it is skipped without one, and
// skipped for Postgres deployments where no local state directory exists.
func buildHistoryIndex(flags Flags, client *genai.Client) *retrieval.HistoryIndex {
	if client == nil {
		slog.Debug("No embedding client, history recall disabled")
		return nil
	}
	if store.DetectDSNType(*flags.dbDSN) != "sqlite" {
		slog.Debug("Non-SQLite store, history recall disabled")
		return nil
	}

	path := filepath.Join(filepath.Dir(*flags.dbDSN), DefaultIndexFileName)
	index, err := retrieval.NewHistoryIndex(path, retrieval.DefaultEmbeddingDim, client)
	if err != nil {
		slog.Error("Failed to open history index, recall disabled", "error", err, "path", path)
		return nil
	}
	slog.Info("History index ready", "path", path)
	return index
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	return apiOpts
}

// runInteractive drives one session over stdin, printing each turn's
// state-machine decision. The coach reply itself comes from a downstream
// generator, so this mode shows the directive and prompt text instead.
func runInteractive(runner *session.Runner, uid string, sessionNumber int) error {
	ctx := context.Background()

	result, err := runner.StartSession(ctx, uid, sessionNumber)
	if err != nil {
		return err
	}
	uid = result.UID
	fmt.Printf("Session %d started for %s\n", result.SessionNumber, uid)
	printTurn(result)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/quit" {
			break
		}

		result, err := runner.ProcessTurn(ctx, uid, input)
		if err != nil {
			return err
		}
		printTurn(result)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return runner.EndSession(uid)
}

func printTurn(result *session.TurnResult) {
	fmt.Printf("[state=%s retrieval=%t]\n", result.State, result.Result.TriggerRetrieval)
	if result.Result.Context != "" {
		fmt.Printf("directive: %s\n", result.Result.Context)
	}
}
