// Command lockqueue drives a lock-guarded FIFO queue with one push and one
// pop task per operation, once per lock implementation, and prints the mean
// wall-clock seconds over three runs.
package main

import (
	"log"
	"math"
	"os"

	"github.com/spf13/pflag"

	"github.com/ahrav/go-tasklocks/bench"
)

func main() {
	numPushPop := pflag.Uint64("num-push-pop", 10000, "Number of push-pop operations per case")
	pflag.Parse()

	logger := log.New(os.Stderr, "lockqueue: ", 0)
	if *numPushPop == 0 || *numPushPop > math.MaxUint32 {
		logger.Fatalf("--num-push-pop must be between 1 and %d, got %d", uint64(math.MaxUint32), *numPushPop)
	}

	inv := bench.Invoker{
		NumTasks: *numPushPop,
		Out:      os.Stdout,
	}
	inv.Run(bench.QueueCases(*numPushPop)...)
}
