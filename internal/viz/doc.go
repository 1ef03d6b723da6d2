// Package viz is the terminal front end of the sandbox.
//
// A [Stage] is the element container the structure manager draws into. It
// projects nodes, beams and force arrows through an orbiting [Camera] onto
// a braille [Canvas]. [Sandbox] is the Bubble Tea model that moves a 3D
// cursor through the world and forwards picks and edits to the selection
// controller.
//
// # Key Bindings
//
//	arrows, pgup/pgdn  move the cursor
//	enter, c, b        pick, multi-pick, pick beam
//	n, L, x            new node, link, delete
//	f, F, 0, m         fix, force, clear force, material
//	W A S D Q E        move the selected node
//	e r g v o          analysis reports
//	space              run or pause
//	?                  help
package viz
