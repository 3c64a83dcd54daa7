package main

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"stormatter/internal/diag"
	"stormatter/internal/diagfmt"
	"stormatter/internal/pathsdat"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Manage paths.dat study files",
	Long:  `Paths reads and rewrites paths.dat study files: show entries, copy targets into a local directory, revert to earlier paths, and inspect the change history`,
}

var pathsFile string

func init() {
	pathsCmd.PersistentFlags().StringVarP(&pathsFile, "file", "f", "./paths.dat", "paths.dat file to operate on")
	pathsCmd.AddCommand(pathsShowCmd)
	pathsCmd.AddCommand(pathsMakeLocalCmd)
	pathsCmd.AddCommand(pathsRevertCmd)
	pathsCmd.AddCommand(pathsHistoryCmd)

	pathsShowCmd.Flags().Bool("track", false, "record this read in the history")
}

var pathsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current paths",
	Args:  cobra.NoArgs,
	RunE:  runPathsShow,
}

var pathsMakeLocalCmd = &cobra.Command{
	Use:   "make-local <name> <destination>",
	Short: "Copy an entry's file into a local directory and repoint paths.dat",
	Args:  cobra.ExactArgs(2),
	RunE:  runPathsMakeLocal,
}

var pathsRevertCmd = &cobra.Command{
	Use:   "revert [name]",
	Short: "Revert entries to their previously recorded paths",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPathsRevert,
}

var pathsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the recorded change history",
	Args:  cobra.NoArgs,
	RunE:  runPathsHistory,
}

func runPathsShow(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	track, err := cmd.Flags().GetBool("track")
	if err != nil {
		return err
	}
	manager, err := openManager(cmd)
	if err != nil {
		return err
	}

	paths, bag, err := manager.Paths(track)
	renderPathsDiagnostics(cmd, manager, bag)
	if err != nil {
		return err
	}
	if paths == nil {
		return fmt.Errorf("%s has parse errors", pathsFile)
	}

	fmt.Printf("Paths from %s:\n", pathsFile)
	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Printf("  %s: %s\n", name, paths[name])
	}
	return nil
}

func runPathsMakeLocal(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	name, destDir := args[0], args[1]

	manager, err := openManager(cmd)
	if err != nil {
		return err
	}
	// Каталог назначения создаётся заранее (mkdir -p)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	_, bag, err := manager.MakeLocal(name, destDir)
	renderPathsDiagnostics(cmd, manager, bag)
	if err != nil {
		return err
	}

	fmt.Printf("Copied %s to %s and updated %s\n", name, destDir, pathsFile)
	return nil
}

func runPathsRevert(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	manager, err := openManager(cmd)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		name := args[0]
		changed, bag, err := manager.RevertEntry(name)
		renderPathsDiagnostics(cmd, manager, bag)
		if err != nil {
			return err
		}
		if !changed {
			fmt.Printf("No previous path recorded for %s in %s\n", name, pathsFile)
			return nil
		}
		fmt.Printf("Reverted %s in %s\n", name, pathsFile)
		return nil
	}

	count, bag, err := manager.Revert()
	renderPathsDiagnostics(cmd, manager, bag)
	if err != nil {
		return err
	}
	if count == 0 {
		fmt.Printf("Nothing to revert in %s\n", pathsFile)
		return nil
	}
	fmt.Printf("Reverted all entries in %s\n", pathsFile)
	return nil
}

func runPathsHistory(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	historyPath, err := pathsdat.DefaultHistoryPath()
	if err != nil {
		return err
	}
	history := pathsdat.NewHistory(historyPath)

	snapshot := history.Snapshot(pathsFile)
	if len(snapshot) == 0 {
		fmt.Printf("No history found for %s\n", pathsFile)
		return nil
	}

	fmt.Printf("History for %s:\n", pathsFile)
	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		entry, ok := history.LastEntry(pathsFile, name)
		if !ok {
			continue
		}
		when := time.Unix(int64(entry.Timestamp), 0).Format("2006-01-02 15:04:05")
		fmt.Printf("  %s: %s (last updated: %s)\n", name, entry.Path, when)
	}
	return nil
}

// openManager checks the dat file exists and wires it to the shared history.
func openManager(cmd *cobra.Command) (*pathsdat.Manager, error) {
	if _, err := os.Stat(pathsFile); err != nil {
		return nil, fmt.Errorf("%s not found", pathsFile)
	}
	historyPath, err := pathsdat.DefaultHistoryPath()
	if err != nil {
		return nil, err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, err
	}
	return pathsdat.NewManager(pathsFile, pathsdat.NewHistory(historyPath), maxDiagnostics), nil
}

func renderPathsDiagnostics(cmd *cobra.Command, manager *pathsdat.Manager, bag *diag.Bag) {
	if bag == nil || (!bag.HasErrors() && !bag.HasWarnings()) {
		return
	}
	bag.Sort()
	opts := diagfmt.PrettyOpts{
		Color:   stderrColor(cmd),
		Context: 2,
	}
	diagfmt.Pretty(os.Stderr, bag, manager.FileSet(), opts)
}
