package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/qgen/internal/library"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Browse and validate question libraries",
}

var libraryContextsCmd = &cobra.Command{
	Use:   "contexts",
	Short: "List contexts and the skills they support",
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := libraryFromFlags(cmd)
		if err != nil {
			return err
		}

		fmt.Printf("%-28s  %-30s  %s\n", "ID", "Name", "Skills")
		fmt.Println(strings.Repeat("─", 100))
		for _, c := range lib.Contexts() {
			fmt.Printf("%-28s  %-30s  %s\n", truncate(c.ID, 28), truncate(c.Name, 30), strings.Join(c.CompatibleSkills.Strings(), ", "))
		}
		fmt.Printf("\n%d contexts\n", len(lib.Contexts()))
		return nil
	},
}

var libraryTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List templates, optionally only those needing a skill",
	RunE: func(cmd *cobra.Command, args []string) error {
		skill, _ := cmd.Flags().GetString("skill")
		lib, err := libraryFromFlags(cmd)
		if err != nil {
			return err
		}

		var shown int
		fmt.Printf("%-28s  %-20s  %-30s  %s\n", "ID", "Goal", "Required skills", "Contexts")
		fmt.Println(strings.Repeat("─", 110))
		for _, t := range lib.Templates() {
			if skill != "" && !t.RequiredSkills.Contains(library.Skill(skill)) {
				continue
			}
			shown++
			fmt.Printf("%-28s  %-20s  %-30s  %s\n",
				truncate(t.ID, 28), truncate(t.GoalID, 20),
				truncate(strings.Join(t.RequiredSkills.Strings(), ", "), 30),
				strings.Join(t.CompatibleContexts, ", "))
		}
		fmt.Printf("\n%d templates\n", shown)
		return nil
	},
}

var libraryValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a library file (or the built-in library) for errors",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			lib *library.Library
			err error
		)
		name := "built-in library"
		if len(args) == 1 {
			name = args[0]
			lib, err = library.LoadFile(args[0])
		} else {
			lib, err = libraryFromFlags(cmd)
		}
		if err != nil {
			return fmt.Errorf("%s is invalid:\n%w", name, err)
		}
		st := lib.Stats()
		fmt.Printf("%s: OK (%d goals, %d contexts, %d templates, %d skills)\n",
			name, st.Goals, st.Contexts, st.Templates, st.Skills)
		return nil
	},
}

func libraryFromFlags(cmd *cobra.Command) (*library.Library, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	lib, err := loadLibrary(cfg.Library.Path)
	if err != nil {
		return nil, fmt.Errorf("load library: %w", err)
	}
	return lib, nil
}

func init() {
	libraryTemplatesCmd.Flags().String("skill", "", "Only show templates requiring this skill")

	libraryCmd.AddCommand(libraryContextsCmd)
	libraryCmd.AddCommand(libraryTemplatesCmd)
	libraryCmd.AddCommand(libraryValidateCmd)
}
