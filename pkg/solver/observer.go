package solver

// Observer is notified of the progress of a solve. Implementations must be safe for concurrent use when
// the same observer is shared by several orchestrators.
type Observer interface {
	PhaseFinished(report PhaseReport)
	Solved(result *Result)
}

type nopObserver struct{}

func (nopObserver) PhaseFinished(PhaseReport) {}
func (nopObserver) Solved(*Result)            {}
