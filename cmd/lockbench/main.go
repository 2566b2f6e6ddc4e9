// Command lockbench compares the lock implementations in this module under
// the small / medium / big contention profiles. It prints one table row per
// lock and profile with the mean wall-clock seconds over three runs.
package main

import (
	"log"
	"math"
	"os"

	"github.com/spf13/pflag"

	"github.com/ahrav/go-tasklocks/bench"
)

func main() {
	numTasks := pflag.Uint64("num-tasks", 10000, "Number of tasks to launch per case")
	grainSize := pflag.Uint64("grain-size", 100, "Microseconds of artificial work per task")
	pflag.Parse()

	logger := log.New(os.Stderr, "lockbench: ", 0)
	if *numTasks == 0 || *numTasks > math.MaxUint32 {
		logger.Fatalf("--num-tasks must be between 1 and %d, got %d", uint64(math.MaxUint32), *numTasks)
	}

	inv := bench.Invoker{
		NumTasks: *numTasks,
		Grain:    *grainSize,
		Out:      os.Stdout,
	}
	inv.Run(bench.CriticalCases(*numTasks)...)
}
