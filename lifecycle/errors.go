package lifecycle

import "errors"

var (
	// ErrUnknownAlgorithm is returned for an algorithm name that is not recognised.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	// ErrUnsupportedAlgorithm is returned for a known algorithm that cannot run.
	ErrUnsupportedAlgorithm = errors.New("algorithm unsupported")
	// ErrDeviceUnavailable is returned when a required device is missing.
	ErrDeviceUnavailable = errors.New("device unavailable")
	// ErrUnknownPolicy is returned for an unrecognised mating or death policy.
	ErrUnknownPolicy = errors.New("unknown policy")
	// ErrBadModuleName is returned when no organism id can be read from a module name.
	ErrBadModuleName = errors.New("module name carries no organism id")

	// errStopped signals that the stepper ended the simulation.
	errStopped = errors.New("simulation stopped")
)

// rebuildError ends startup without a failure: the organism asks to be
// built again and dies.
type rebuildError struct {
	reason string
}

func (e *rebuildError) Error() string { return "rebuild requested: " + e.reason }
