package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize tutorgen configuration",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("getting home dir: %w", err)
	}

	configDir := filepath.Join(home, ".tutorgen")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config already exists: %s\n", configPath)
		return nil
	}

	defaultConfig := `# tutorgen configuration
provider:
  endpoint: https://openrouter.ai/api/v1
  model: google/gemini-2.5-pro
  api_key_env: OPENROUTER_API_KEY
  api_timeout: 300s

crawl:
  include_patterns: ["*.go", "*.py", "*.js", "*.ts", "*.rs", "*.java", "*.md"]
  exclude_patterns: ["vendor/", "node_modules/", ".git/", "*test*"]
  max_file_size: 100KB
  max_files: 200

language: english
use_cache: true
max_abstractions: 10
output_dir: output
log_level: info
`

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println("Edit the file to set your provider and preferences.")
	fmt.Println("Set OPENROUTER_API_KEY environment variable for API access.")
	return nil
}
