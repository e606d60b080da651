// Package flog is the logging seam used by the Krylov drivers and AMG
// setup/cycle code. It wraps klog so that the library's print_level knob
// (params.PrintLevel) maps onto klog's verbosity levels instead of raw
// fmt.Printf calls, while still never aborting the process itself (section 7:
// "The core does not mutate process state").
package flog

import (
	"k8s.io/klog/v2"

	"github.com/gofasp/gofasp/params"
)

// V reports the klog Verbose gate for the given print level, so call sites
// read as flog.V(lvl).Infof(...) the way klog itself is normally used.
func V(level params.PrintLevel) klog.Verbose {
	return klog.V(klog.Level(level))
}

// Summary emits the single human-readable termination line the design calls
// for: iteration count, relative residual, and the reason the driver
// stopped. It is a no-op below PrintMin.
func Summary(level params.PrintLevel, solver string, iter int, relres float64, status params.Status) {
	if level < params.PrintMin {
		return
	}
	klog.V(klog.Level(params.PrintMin)).Infof(
		"%s: iter=%d relres=%.6e status=%s", solver, iter, relres, status)
}

// Iteration emits a per-iteration trace line at PrintMore and above.
func Iteration(level params.PrintLevel, solver string, iter int, relres float64) {
	if level < params.PrintMore {
		return
	}
	klog.V(klog.Level(params.PrintMore)).Infof("%s: iter=%3d relres=%.6e", solver, iter, relres)
}

// Warning surfaces a recoverable numerical warning (e.g. a diagonal
// substitution in a smoother) without failing the calling operation.
func Warning(format string, args ...interface{}) {
	klog.Warningf(format, args...)
}
