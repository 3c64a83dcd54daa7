package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stormatter/internal/prof"
)

// setupProfiling reads the persistent --cpu-profile/--mem-profile/--runtime-trace
// flags and starts the requested profilers. The returned cleanup is safe to
// call more than once; the first call stops everything and writes the heap
// profile last, after the trace and CPU profile have flushed.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()

	var paths struct {
		cpu, mem, trace string
	}
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"cpu-profile", &paths.cpu},
		{"mem-profile", &paths.mem},
		{"runtime-trace", &paths.trace},
	} {
		v, err := flags.GetString(f.name)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s flag: %w", f.name, err)
		}
		*f.dst = v
	}

	stopCPU := func() {}
	stopTrace := func() {}
	writeMem := func() {}

	if paths.cpu != "" {
		if err := prof.StartCPU(paths.cpu); err != nil {
			return nil, fmt.Errorf("failed to start cpu profile: %w", err)
		}
		stopCPU = prof.StopCPU
	}
	if paths.trace != "" {
		if err := prof.StartTrace(paths.trace); err != nil {
			stopCPU()
			return nil, fmt.Errorf("failed to start trace: %w", err)
		}
		stopTrace = prof.StopTrace
	}
	if paths.mem != "" {
		writeMem = func() {
			if err := prof.WriteMem(paths.mem); err != nil {
				fmt.Fprintf(os.Stderr, "failed to write heap profile: %v\n", err)
			}
		}
	}

	cleaned := false
	return func() {
		if cleaned {
			return
		}
		cleaned = true
		stopTrace()
		stopCPU()
		writeMem()
	}, nil
}
