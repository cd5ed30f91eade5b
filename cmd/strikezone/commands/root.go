package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	analysisPath string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands.
// Without a subcommand it runs the batch.
var rootCmd = &cobra.Command{
	Use:   "strikezone",
	Short: "strikezone - 시즌별 스트라이크 존 분석 배치",
	Long: `strikezone CLI

투구 추적 데이터를 시즌별로 정제하고 스트라이크 비율 히트맵을 생성합니다.
split → clean → zone → bin → render 순서로 처리합니다.

Usage:
  go run ./cmd/strikezone [command]

Examples:
  go run ./cmd/strikezone
  go run ./cmd/strikezone run --years 2021,2022
  go run ./cmd/strikezone split --source mlb_pitch_data_2020_2024.csv
  go run ./cmd/strikezone history --year 2023
  go run ./cmd/strikezone scheduler start`,
	SilenceUsage: true,
	RunE:         runBatch,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&analysisPath, "config", "", "analysis config file (default is $ANALYSIS_CONFIG or strikezone.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	addRunFlags(rootCmd)
}
