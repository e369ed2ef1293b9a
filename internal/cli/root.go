package cli

import (
	"fmt"

	"github.com/futureCreator/tutorgen/pkg/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tutorgen",
	Short: "Codebase-to-tutorial generator",
	Long:  `tutorgen crawls a GitHub repository or local directory and uses an LLM to write a beginner-friendly Markdown tutorial of its core abstractions.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(statsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tutorgen %s\n", version.Version)
	},
}
