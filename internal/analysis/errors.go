package analysis

import "errors"

// ErrNoFixedNodes indicates a reaction solve on a structure without supports.
var ErrNoFixedNodes = errors.New("analysis: no fixed nodes to carry reaction forces")
