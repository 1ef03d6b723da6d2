package physics

import "errors"

var (
	// ErrUnknownModel indicates a beam model name that is not recognised.
	ErrUnknownModel = errors.New("physics: unknown beam model")

	// ErrInvalidStep indicates a non-positive frame duration.
	ErrInvalidStep = errors.New("physics: frame dt must be positive")

	// ErrUnstable indicates the integrated state contains NaN or Inf.
	ErrUnstable = errors.New("physics: state diverged (NaN or Inf detected)")

	// ErrNoIntegrator indicates the spring model was requested without an integrator.
	ErrNoIntegrator = errors.New("physics: spring model needs an integrator")
)
