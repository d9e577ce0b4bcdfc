package pipeline

// Stage is an ordering tag controlling a middleware's position in the
// chain. Middleware sort by ascending stage rank; StageUnspecified sorts
// after every explicit stage. Ties break by registration order.
type Stage uint8

const (
	// StageUnspecified means "run after all staged middleware".
	StageUnspecified Stage = iota
	StageStart
	StageRateLimiting
	StageInstrumentation
	StagePreProcessing
	StageValidation
	StageAuthorization
	StageRouting
	StageProcessing
	StagePostProcessing
	StageError
)

// rank returns the sort key for a stage. Unspecified stages sort last.
func (s Stage) rank() int {
	if s == StageUnspecified {
		return int(StageError) + 1
	}
	return int(s)
}

// String returns the stage name for logging.
func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageRateLimiting:
		return "rate_limiting"
	case StageInstrumentation:
		return "instrumentation"
	case StagePreProcessing:
		return "pre_processing"
	case StageValidation:
		return "validation"
	case StageAuthorization:
		return "authorization"
	case StageRouting:
		return "routing"
	case StageProcessing:
		return "processing"
	case StagePostProcessing:
		return "post_processing"
	case StageError:
		return "error"
	default:
		return "unspecified"
	}
}
