package store

import "github.com/VictoriaMetrics/metrics"

// Operation counters, exposed through the default metrics set so embedding
// applications can publish them alongside their own.
var (
	readOps   = metrics.NewCounter("konserve_read_ops_total")
	writeOps  = metrics.NewCounter("konserve_write_ops_total")
	deleteOps = metrics.NewCounter("konserve_delete_ops_total")
	enumOps   = metrics.NewCounter("konserve_enum_ops_total")
)
