package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/qgen/internal/llm"
	"github.com/abhisek/qgen/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded answer-synthesis calls",
	Long: `Every provider call made while synthesizing answer options is recorded
in the local database when db.enabled is set. These commands read that log.`,
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent provider calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		asJSON, _ := cmd.Flags().GetBool("json")
		failed, _ := cmd.Flags().GetBool("failed")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if failed {
			kept := events[:0]
			for _, e := range events {
				if !e.Success {
					kept = append(kept, e)
				}
			}
			events = kept
		}

		if asJSON {
			return writeJSON(os.Stdout, events)
		}
		if len(events) == 0 {
			fmt.Println(dimStyle.Render("No provider calls recorded."))
			return nil
		}
		printEventTable(os.Stdout, events)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and response of one call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, e)
		}
		printEvent(os.Stdout, e)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(byPurpose) == 0 {
			fmt.Println(dimStyle.Render("No provider calls recorded."))
			return nil
		}
		byModel, err := s.LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		printPurposeUsage(os.Stdout, byPurpose)
		fmt.Println()
		printModelCost(os.Stdout, byModel)
		return nil
	},
}

const timeLayout = "2006-01-02 15:04:05"

func rule(n int) string { return dimStyle.Render(strings.Repeat("─", n)) }

func printEventTable(w io.Writer, events []store.LLMEvent) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%-5s  %-19s  %-18s  %-28s  %6s  %6s  %7s  %s",
		"ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "OK")))
	fmt.Fprintln(w, rule(104))
	for _, e := range events {
		fmt.Fprintf(w, "%-5d  %-19s  %-18s  %-28s  %6d  %6d  %7d  %s\n",
			e.ID,
			e.Timestamp.Local().Format(timeLayout),
			truncate(e.Purpose, 18),
			truncate(e.Model, 28),
			e.InputTokens,
			e.OutputTokens,
			e.LatencyMs,
			okMark(e.Success),
		)
	}
}

func printEvent(w io.Writer, e *store.LLMEvent) {
	field := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", dimStyle.Render(fmt.Sprintf("%-9s", label)), value)
	}
	field("ID", strconv.Itoa(e.ID))
	field("Time", e.Timestamp.Local().Format(timeLayout))
	field("Provider", e.Provider)
	field("Model", e.Model)
	field("Purpose", e.Purpose)
	field("Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens))
	field("Latency", fmt.Sprintf("%dms", e.LatencyMs))
	field("Result", okMark(e.Success))
	if e.ErrorMessage != "" {
		field("Error", wrongStyle.Render(e.ErrorMessage))
	}

	for _, part := range []struct{ title, body string }{
		{"REQUEST", e.RequestBody},
		{"RESPONSE", prettyJSON(e.ResponseBody)},
	} {
		fmt.Fprintln(w)
		fmt.Fprintln(w, titleStyle.Render(part.title))
		fmt.Fprintln(w, rule(60))
		if part.body == "" {
			fmt.Fprintln(w, dimStyle.Render("(not captured)"))
			continue
		}
		fmt.Fprintln(w, part.body)
	}
}

func printPurposeUsage(w io.Writer, stats []store.PurposeUsage) {
	fmt.Fprintln(w, titleStyle.Render("Usage by purpose"))
	fmt.Fprintln(w, rule(74))
	fmt.Fprintf(w, "%-18s  %6s  %10s  %10s  %10s  %8s\n",
		"Purpose", "Calls", "Input", "Output", "Total", "Avg ms")

	var calls, in, out int
	for _, st := range stats {
		fmt.Fprintf(w, "%-18s  %6d  %10d  %10d  %10d  %8d\n",
			truncate(st.Purpose, 18), st.Calls, st.InputTokens, st.OutputTokens,
			st.InputTokens+st.OutputTokens, st.AvgLatencyMs)
		calls += st.Calls
		in += st.InputTokens
		out += st.OutputTokens
	}
	fmt.Fprintln(w, rule(74))
	fmt.Fprintf(w, "%-18s  %6d  %10d  %10d  %10d\n", "TOTAL", calls, in, out, in+out)
}

func printModelCost(w io.Writer, usage []store.ModelUsage) {
	fmt.Fprintln(w, titleStyle.Render("Estimated cost (USD)"))
	fmt.Fprintln(w, rule(74))
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %8s\n", "Model", "Calls", "Input", "Output", "Cost")

	var total float64
	var unpriced []string
	for _, mu := range usage {
		cost := "?"
		if c := llm.LookupCost(mu.Model); c != nil {
			usd := c.Cost(mu.InputTokens, mu.OutputTokens)
			total += usd
			cost = formatCost(usd)
		} else {
			unpriced = append(unpriced, mu.Model)
		}
		fmt.Fprintf(w, "%-32s  %6d  %10d  %10d  %8s\n",
			truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, cost)
	}
	fmt.Fprintln(w, rule(74))
	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %8s\n", label, "", "", "", formatCost(total))
	if len(unpriced) > 0 {
		fmt.Fprintln(w, dimStyle.Render("No pricing for: "+strings.Join(unpriced, ", ")))
	}
}

func okMark(ok bool) string {
	if ok {
		return correctStyle.Render("✓")
	}
	return wrongStyle.Render("✗")
}

// prettyJSON indents s when it is a JSON document and returns it as is
// otherwise.
func prettyJSON(s string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(s), "", "  "); err != nil {
		return s
	}
	return buf.String()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncate cuts s to at most max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. answer-synthesis)")
	llmListCmd.Flags().Bool("failed", false, "Only show failed calls")
	llmListCmd.Flags().Bool("json", false, "Print JSON instead of a table")
	llmViewCmd.Flags().Bool("json", false, "Print JSON instead of text")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
