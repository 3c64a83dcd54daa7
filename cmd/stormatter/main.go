package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"stormatter/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "stormatter [flags] <path> [path...]",
	Short: "STORM data file formatter",
	Long:  `stormatter normalizes whitespace in STORM data files: runs of spaces and tabs collapse to single spaces, blank lines disappear, and section blocks can be indented`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFormat,
}

// main wires the subcommands and persistent flags into the root command and
// executes it. A failed run exits with status code 1.
func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	// Добавляем команды
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to the given file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to the given file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a runtime trace to the given file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// stderrColor decides whether diagnostics printed to stderr get colored.
func stderrColor(cmd *cobra.Command) bool {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false
	}
	return colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stderr))
}
