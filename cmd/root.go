package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/qgen/internal/config"
	"github.com/abhisek/qgen/internal/library"
	"github.com/abhisek/qgen/internal/llm"
	"github.com/abhisek/qgen/internal/qgen"
	"github.com/abhisek/qgen/internal/store"
	"github.com/abhisek/qgen/internal/synth"
)

var rootCmd = &cobra.Command{
	Use:   "qgen",
	Short: "PAES math question generator",
	Long: `qgen builds PAES mathematics questions from a library of goals,
contexts and templates, and can ask an LLM to author the answer options.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to qgen.yaml (default: ./qgen.yaml or ~/.config/qgen/qgen.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QGEN_DB_PATH)")
	rootCmd.PersistentFlags().String("library", "", "Path to a library YAML file (default: built-in PAES library)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(libraryCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the configuration file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DB.Path = p
	}
	if p, _ := cmd.Flags().GetString("library"); p != "" {
		cfg.Library.Path = p
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db / config (highest
// priority), then QGEN_DB, then the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DB.Path != "" {
		return cfg.DB.Path, store.EnsureDir(cfg.DB.Path)
	}
	return store.DefaultDBPath()
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func loadLibrary(path string) (*library.Library, error) {
	if path == "" {
		return library.Default()
	}
	return library.LoadFile(path)
}

// newSynthesizer builds the LLM-backed answer synthesizer. reqLog may be
// nil, in which case requests are not recorded.
func newSynthesizer(ctx context.Context, cfg *config.Config, reqLog *store.Store, log *zap.Logger) (qgen.AnswerSynthesizer, error) {
	var sink llm.RequestLog
	if reqLog != nil {
		sink = reqLog
	}
	provider, err := llm.NewProvider(ctx, cfg.LLM, sink, log)
	if err != nil {
		return nil, fmt.Errorf("LLM provider: %w", err)
	}
	return synth.New(provider, synth.DefaultConfig()), nil
}
