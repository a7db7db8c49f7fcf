// Package viz renders the cloth in the terminal.
//
// Drawing happens on a [Canvas] of braille cells, each holding 2x4 dots.
// A [Camera] orbits the scene and projects world points onto the canvas.
// [Model] is the Bubble Tea live view; [RunMenu] adds a preset picker in
// front of it.
//
// # Key Bindings
//
//	Space      - Pause/Resume
//	N          - Single frame while paused
//	R          - Rebuild the scene
//	Arrows W S - Pull the cloth along X, Z and Y
//	O P        - Release the first or second pin
//	X Y Z      - Rotate the camera (shift reverses)
//	+ -        - Zoom
//	M          - Cycle draw mode (structural, springs, faces, nodes)
//	T          - Cycle color themes
//	?          - Toggle help
package viz
