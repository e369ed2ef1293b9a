package cli

import (
	"fmt"
	"strings"

	"github.com/futureCreator/tutorgen/internal/run"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cost and run statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	metas, err := run.List()
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(metas) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	var totalCost float64
	var completed, failed int
	for _, m := range metas {
		totalCost += m.TotalCost
		switch m.Status {
		case "completed":
			completed++
		case "failed":
			failed++
		}
	}

	fmt.Printf("Runs: %d total, %d completed, %d failed\n", len(metas), completed, failed)
	fmt.Printf("Total cost: $%.4f\n", totalCost)
	fmt.Printf("Average cost: $%.4f\n", totalCost/float64(len(metas)))
	fmt.Println()
	fmt.Printf("%-20s %-10s %-12s %-6s %s\n", "Started", "Status", "Cost", "Source", "Ref")
	fmt.Println(strings.Repeat("─", 76))
	for _, m := range metas {
		fmt.Printf("%-20s %-10s $%-11.4f %-6s %s\n",
			m.StartedAt.Format("2006-01-02 15:04:05"), m.Status, m.TotalCost, m.Source, m.SourceRef)
	}
	return nil
}
