// Package physics advances a structure by one frame.
//
// Two beam models are available:
//
//   - [Snapshot]: beams only classify the forces already acting on their
//     endpoint nodes; nodes are damped and drift with their velocity.
//   - [Spring]: beams are Hookean springs that push and pull their nodes;
//     the free-node state is advanced by an [Integrator].
//
// The integration primitives ([State], [System], [Integrator]) are shared
// with package integrators.
package physics
