package precond

import (
	"github.com/gofasp/gofasp/amg"
	"github.com/gofasp/gofasp/krylov"
)

// WithAMLI wires krylov.FGMRESFlexible into h.AMLI so h.Cycle can run
// nonlinear-AMLI cycles (section 4.6). This is the one place amg and
// krylov meet: amg.FlexibleSolver is a bare function type so it can be
// satisfied by krylov.FGMRESFlexible without either package importing the
// other (see DESIGN.md).
func WithAMLI(h *amg.Hierarchy) *amg.Hierarchy {
	h.AMLI = krylov.FGMRESFlexible
	return h
}

// WithAMLIGCG is the GCG-flexible-inner-solve variant of WithAMLI, cheaper
// per iteration than FGMRES at the cost of losing exact short-recurrence
// optimality once the direction window fills and restarts.
func WithAMLIGCG(h *amg.Hierarchy) *amg.Hierarchy {
	h.AMLI = krylov.GCGFlexible
	return h
}
