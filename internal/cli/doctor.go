package cli

import (
	"fmt"

	"github.com/futureCreator/tutorgen/internal/config"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check tutorgen configuration",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	allOK := true

	check := func(label string, ok bool, hint string) {
		if ok {
			fmt.Printf("✅ %s\n", label)
		} else {
			fmt.Printf("❌ %s — %s\n", label, hint)
			allOK = false
		}
	}

	cfg, cfgErr := config.Load()
	check("config loadable", cfgErr == nil, fmt.Sprintf("fix config: %v", cfgErr))
	if cfgErr == nil {
		validateErr := cfg.Validate()
		check("config valid", validateErr == nil, fmt.Sprintf("%v", validateErr))

		apiKey := cfg.APIKey()
		check(cfg.Provider.APIKeyEnv+" set", apiKey != "",
			"set environment variable "+cfg.Provider.APIKeyEnv)
	}

	fmt.Println()
	if allOK {
		fmt.Println("All checks passed. tutorgen is ready.")
	} else {
		fmt.Println("Some checks failed. Fix the issues above before running tutorgen.")
	}
	return nil
}
