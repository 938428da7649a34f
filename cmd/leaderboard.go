package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/frahmantamala/attendance-engine/internal/performance"
	"github.com/spf13/cobra"
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Print the performance leaderboard as JSON",
	Long:  `Compute the leaderboard for a period without going through the HTTP API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printLeaderboard(cmd.Context())
	},
}

var (
	leaderboardPeriod     string
	leaderboardStart      string
	leaderboardEnd        string
	leaderboardDepartment string
	leaderboardEmployee   string
)

func printLeaderboard(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	deps, err := initializeDependencies(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close()

	q := performance.LeaderboardQuery{
		Period:     performance.PeriodTag(leaderboardPeriod),
		StartDate:  leaderboardStart,
		EndDate:    leaderboardEnd,
		Department: leaderboardDepartment,
	}

	var out interface{}
	if leaderboardEmployee != "" {
		out, err = deps.Performance.EmployeePerformance(ctx, leaderboardEmployee, q)
	} else {
		out, err = deps.Performance.Leaderboard(ctx, q)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func init() {
	leaderboardCmd.Flags().StringVarP(&leaderboardPeriod, "period", "p", string(performance.PeriodMonthly), "WEEKLY, MONTHLY, YEARLY or CUSTOM")
	leaderboardCmd.Flags().StringVar(&leaderboardStart, "start", "", "start date (YYYY-MM-DD) for CUSTOM periods")
	leaderboardCmd.Flags().StringVar(&leaderboardEnd, "end", "", "end date (YYYY-MM-DD) for CUSTOM periods")
	leaderboardCmd.Flags().StringVar(&leaderboardDepartment, "department", "", "restrict to one department")
	leaderboardCmd.Flags().StringVar(&leaderboardEmployee, "employee", "", "print a single employee's performance instead")

	rootCmd.AddCommand(leaderboardCmd)
}
