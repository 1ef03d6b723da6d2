// Package structure provides the node–beam model of a mechanical structure.
//
// The package defines the entities a user builds in the sandbox and the
// manager that owns them:
//
//   - [Node]: point mass with force, acceleration and velocity channels
//   - [Beam]: connector between two nodes with a force classification
//   - [Material]: fixed catalog of beam materials
//   - [Manager]: owns nodes and beams, cascades deletes, answers selection queries
//
// # Example
//
//	m := structure.NewManager(structure.DefaultWorld(), structure.DefaultNodeDefaults(), nil)
//	a, _ := m.CreateNode(r3.Vec{})
//	b, _ := m.CreateNode(r3.Vec{X: 1})
//	beam, _ := m.CreateBeam(a, b)
//	m.Update(1.0 / 60)
//
// # Thread Safety
//
// Manager, Node and Beam are NOT thread-safe. All mutations are expected to
// happen on a single frame/UI goroutine.
package structure
