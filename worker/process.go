package worker

import (
	"os"
	"strconv"

	"github.com/kbukum/taskbridge/config"
)

// IsWorkerFromEnv reports whether TASKBRIDGE_WORKER_PROCESS holds a true
// boolean value. Missing or unparseable values mean false.
func IsWorkerFromEnv() bool {
	v, ok := os.LookupEnv(config.WorkerProcessEnv)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
