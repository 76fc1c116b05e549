package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/qgen/internal/qgen"
	"github.com/abhisek/qgen/internal/store"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview complete questions with LLM-authored options",
	Long: `Generate and interactively answer questions for a set of skills.

Each question goes through the full single-question path, including answer
synthesis, so an LLM provider must be configured. Requests are recorded in
the database unless --no-db is given.`,
	RunE: runPreview,
}

func init() {
	addRequestFlags(previewCmd)
	previewCmd.Flags().IntP("count", "n", 3, "Number of questions to preview")
	previewCmd.Flags().Bool("no-db", false, "Do not record LLM requests")
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.LLMEnabled() {
		return fmt.Errorf("no LLM provider configured: set QGEN_LLM_PROVIDER or an API key")
	}
	count, _ := cmd.Flags().GetInt("count")
	noDB, _ := cmd.Flags().GetBool("no-db")

	lib, err := loadLibrary(cfg.Library.Path)
	if err != nil {
		return fmt.Errorf("load library: %w", err)
	}

	var reqLog *store.Store
	if cfg.DB.Enabled && !noDB {
		reqLog, err = openStore(cmd)
		if err != nil {
			return err
		}
		defer reqLog.Close()
	}

	ctx := cmd.Context()
	synthesizer, err := newSynthesizer(ctx, cfg, reqLog, zap.NewNop())
	if err != nil {
		return err
	}
	svc, err := qgen.NewService(qgen.Options{
		Library:          lib,
		Synthesizer:      synthesizer,
		MaxAttempts:      cfg.Generation.MaxAttempts,
		SynthesisTimeout: cfg.Generation.SynthesisTimeout,
	})
	if err != nil {
		return err
	}

	req := requestFromFlags(cmd)
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println(titleStyle.Render(fmt.Sprintf("%s · %s · %s", req.Level, req.Subject, strings.Join(req.TargetSkills, ", "))))
	fmt.Println(dimStyle.Render(fmt.Sprintf("Generating %d questions...", count)))
	fmt.Println()

	var correct, answered int
	for i := 1; i <= count; i++ {
		q, err := svc.GenerateSingleQuestion(ctx, req)
		if err != nil {
			fmt.Println(wrongStyle.Render(fmt.Sprintf("Question %d: %s: %v", i, qgen.ErrorCode(err), err)))
			fmt.Println()
			continue
		}
		// Advance the seed so a seeded preview does not repeat itself.
		if req.Seed != nil {
			next := *req.Seed + 1
			req.Seed = &next
		}

		fmt.Println(renderQuestion(i, count, q))

		fmt.Print("\nYour answer: ")
		if !scanner.Scan() {
			fmt.Println("\n(input closed)")
			break
		}
		choice, ok := parseChoice(scanner.Text(), len(q.Options))
		if !ok {
			fmt.Println(dimStyle.Render("(skipped)"))
			fmt.Println()
			continue
		}

		answered++
		if choice == *q.CorrectAnswer {
			correct++
			fmt.Println(correctStyle.Render("✓ Correct!"))
		} else {
			fmt.Printf("%s Answer: %s) %s\n", wrongStyle.Render("✗ Wrong."),
				optionLabel(*q.CorrectAnswer), q.Options[*q.CorrectAnswer])
		}
		if q.Explanation != "" {
			fmt.Println(dimStyle.Render("Explanation: " + q.Explanation))
		}
		fmt.Println()
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Summary: %d/%d correct", correct, answered)))
	return nil
}

func renderQuestion(i, n int, q *qgen.GeneratedQuestion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", titleStyle.Render(fmt.Sprintf("Question %d/%d", i, n)))
	fmt.Fprintf(&b, "%s\n\n", dimStyle.Render(fmt.Sprintf("%s · %s · %s", q.Context.Name, q.Template.Name, q.Difficulty)))
	b.WriteString(q.Question)
	b.WriteString("\n")
	for j, opt := range q.Options {
		fmt.Fprintf(&b, "\n  %s) %s", optionLabel(j), opt)
	}
	return cardStyle.Render(b.String())
}

func optionLabel(i int) string {
	return string(rune('A' + i))
}

// parseChoice accepts a letter (A, b) or a 1-based number.
func parseChoice(s string, n int) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if k, err := strconv.Atoi(s); err == nil {
		return k - 1, k >= 1 && k <= n
	}
	if len(s) == 1 {
		k := int(strings.ToUpper(s)[0] - 'A')
		return k, k >= 0 && k < n
	}
	return 0, false
}
