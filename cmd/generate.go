package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/qgen/internal/qgen"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a batch of questions and print them as JSON",
	Long: `Generate questions without answer options, the same way the
/api/qgen/generate endpoint does. No LLM is involved.`,
	RunE: runGenerate,
}

func init() {
	addRequestFlags(generateCmd)
	generateCmd.Flags().IntP("count", "n", 1, "Number of questions (1-10)")
}

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("skills", nil, "Target skill codes, comma separated (required)")
	cmd.Flags().String("level", string(qgen.LevelM1), "PAES level: M1 or M2")
	cmd.Flags().String("subject", string(qgen.SubjectNumbers), "Subject: números, álgebra, geometría or probabilidad")
	cmd.Flags().Uint64("seed", 0, "Seed for reproducible output (default: random)")
	_ = cmd.MarkFlagRequired("skills")
}

func requestFromFlags(cmd *cobra.Command) qgen.Request {
	skills, _ := cmd.Flags().GetStringSlice("skills")
	level, _ := cmd.Flags().GetString("level")
	subject, _ := cmd.Flags().GetString("subject")
	req := qgen.Request{
		TargetSkills: skills,
		Level:        qgen.Level(level),
		Subject:      qgen.Subject(subject),
	}
	if cmd.Flags().Changed("seed") {
		seed, _ := cmd.Flags().GetUint64("seed")
		req.Seed = &seed
	}
	return req
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	lib, err := loadLibrary(cfg.Library.Path)
	if err != nil {
		return fmt.Errorf("load library: %w", err)
	}
	svc, err := qgen.NewService(qgen.Options{Library: lib, MaxAttempts: cfg.Generation.MaxAttempts})
	if err != nil {
		return err
	}

	req := requestFromFlags(cmd)
	req.NumberOfQuestions, _ = cmd.Flags().GetInt("count")

	questions, err := svc.GenerateQuestions(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("%s: %w", qgen.ErrorCode(err), err)
	}

	return writeJSON(os.Stdout, questions)
}
