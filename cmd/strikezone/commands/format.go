package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/wonny/strikezone/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// RunMetadata holds what is printed above a command's output
type RunMetadata struct {
	Title   string
	Tag     string
	Config  string
	Years   string
	Workers int
}

// PrintRunHeader prints a formatted run header
func PrintRunHeader(meta RunMetadata) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", meta.Title)
	PrintSeparator()
	if meta.Config != "" {
		fmt.Printf("  Config    : %s\n", meta.Config)
	}
	if meta.Years != "" {
		fmt.Printf("  Seasons   : %s\n", meta.Years)
	}
	if meta.Workers > 0 {
		fmt.Printf("  Workers   : %d\n", meta.Workers)
	}
	PrintSeparator()
	fmt.Printf("[%s] started at %s\n", meta.Tag, time.Now().Format("2006-01-02 15:04:05"))
}

// PrintReport prints one row per season and the totals
func PrintReport(report *contracts.BatchReport) {
	widths := []int{6, 8, 8, 8, 8, 8, 40}
	fmt.Println()
	PrintTableHeader([]string{"YEAR", "STATUS", "ROWS", "CLEANED", "DROPPED", "BINNED", "DETAIL"}, widths)
	for _, y := range report.Years {
		PrintTableRow([]string{
			fmt.Sprintf("%d", y.Year),
			string(y.Status),
			fmt.Sprintf("%d", y.RawRows),
			fmt.Sprintf("%d", y.Cleaned),
			fmt.Sprintf("%d", y.Dropped),
			fmt.Sprintf("%d", y.Binned),
			yearDetail(y),
		}, widths)
	}
	fmt.Println()
	PrintKeyValue("Run ID", report.RunID, 10)
	PrintKeyValue("Config", truncate(report.ConfigHash, 12), 10)
	PrintKeyValue("Result", fmt.Sprintf("%d succeeded, %d skipped, %d failed",
		report.Succeeded(), report.Skipped(), report.Failed()), 10)
	PrintKeyValue("Duration", report.Duration.Round(time.Millisecond).String(), 10)
}

func yearDetail(y contracts.YearResult) string {
	switch y.Status {
	case contracts.StatusSuccess:
		if y.Zone == nil {
			return ""
		}
		detail := fmt.Sprintf("zone %.2f-%.2f", y.Zone.Bottom, y.Zone.Top)
		if !y.Zone.Derived {
			detail += " (default)"
		}
		if y.CacheHit {
			detail += ", cached grid"
		}
		return detail
	default:
		reason := y.Reason
		if len(reason) > 60 {
			reason = truncate(reason, 57) + "..."
		}
		if y.Stage != "" {
			return fmt.Sprintf("[%s] %s", y.Stage, reason)
		}
		return reason
	}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}
