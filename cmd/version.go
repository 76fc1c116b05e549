package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

// buildVersion prefers the ldflags value, then the module version
// recorded by `go install`.
func buildVersion() string {
	if version != "(devel)" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return version
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the qgen version",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "qgen", buildVersion())
		if verbose, _ := cmd.Flags().GetBool("verbose"); !verbose {
			return nil
		}
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return nil
		}
		fmt.Fprintln(out, dimStyle.Render("go "+info.GoVersion))
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" || s.Key == "vcs.time" {
				fmt.Fprintln(out, dimStyle.Render(s.Key+" "+s.Value))
			}
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "Also print Go and VCS build details")
}
