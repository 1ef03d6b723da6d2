// Package analysis answers on-demand questions about a structure.
//
// An [Engine] reads the nodes and beams held by a structure manager:
//
//   - [Engine.CenterOfGravity]: mass-weighted mean position
//   - [Engine.CheckEquilibrium]: net force and net moment about the centre of gravity
//   - [Engine.CalculateMissingForces]: reaction forces spread over the fixed nodes
//   - [Engine.CalculateBeamForces]: per-beam classification summary
//   - [Engine.Connectivity]: connected parts and nodes not held by any support
//
// [Spectrum] and [DominantFrequency] operate on recorded time series, such
// as the kinetic energy of a spring-model run.
//
// # Reactions
//
// Reactions require at least one fixed node:
//
//	r, err := engine.CalculateMissingForces()
//	if errors.Is(err, analysis.ErrNoFixedNodes) {
//	    // nothing can carry the load
//	}
package analysis
