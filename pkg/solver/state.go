package solver

type State int

const (
	Init State = iota
	SearchStrict
	SearchRelaxed
	SucceededStrict
	SucceededRelaxed
	Failed
)

func (state State) String() string {
	switch state {
	case Init:
		return "INIT"
	case SearchStrict:
		return "SEARCH_STRICT"
	case SearchRelaxed:
		return "SEARCH_RELAXED"
	case SucceededStrict:
		return "SUCCEEDED_STRICT"
	case SucceededRelaxed:
		return "SUCCEEDED_RELAXED"
	default:
		return "FAILED"
	}
}

func (state State) Terminal() bool {
	return state == SucceededStrict || state == SucceededRelaxed || state == Failed
}

// ExitCode maps a terminal state to the process exit code reported to the caller
func (state State) ExitCode() int {
	switch state {
	case SucceededStrict:
		return 0
	case SucceededRelaxed:
		return 1
	default:
		return 2
	}
}

func (state State) MarshalText() ([]byte, error) {
	return []byte(state.String()), nil
}
