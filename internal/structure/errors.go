package structure

import "errors"

// Domain errors for structure operations.
var (
	// ErrInvalidMass indicates a non-positive node mass.
	ErrInvalidMass = errors.New("structure: mass must be positive")

	// ErrNilNode indicates a beam endpoint that is nil.
	ErrNilNode = errors.New("structure: beam endpoint is nil")

	// ErrDegenerateBeam indicates a beam whose endpoints are the same node.
	ErrDegenerateBeam = errors.New("structure: beam endpoints must be distinct nodes")

	// ErrDuplicateBeam indicates a second beam between the same pair of nodes.
	ErrDuplicateBeam = errors.New("structure: nodes are already connected")

	// ErrNodeNotFound indicates a node that is not owned by the manager.
	ErrNodeNotFound = errors.New("structure: node not found")

	// ErrBeamNotFound indicates a beam that is not owned by the manager.
	ErrBeamNotFound = errors.New("structure: beam not found")

	// ErrUnknownMaterial indicates a material name missing from the catalog.
	ErrUnknownMaterial = errors.New("structure: unknown material")

	// ErrSelectionCount indicates the selection does not hold exactly two nodes.
	ErrSelectionCount = errors.New("structure: exactly 2 nodes must be selected")
)
