// Package cloth implements a mass-spring cloth lattice.
//
// A [Mesh] owns a grid of [MassPoint] values and the [Spring] network that
// connects them. Springs and faces refer to points by index into the mesh's
// point slice, so the mesh can be copied, inspected and exported without
// pointer aliasing.
//
// Each simulation tick runs four ordered passes:
//
//	mesh.ComputeForce(dt, gravity)
//	mesh.Integrate(dt)
//	mesh.CollisionResponse(ground, sphere)
//	mesh.ComputeNormal() // once per displayed frame, for rendering
//
// All forces are accumulated from the positions left by the previous
// integration pass before any point is advanced. Interleaving the passes
// changes the physics.
//
// # Integrators
//
// The default [SemiImplicitEuler] updates velocity from force and then
// position from the new velocity. [StrainLimited] runs the same step and then
// relaxes springs stretched beyond a configured ratio, which is the
// position-correction variant of the lattice. [Verlet] is velocity Verlet and
// re-evaluates spring forces at the predicted state, so it drifts less in
// energy for the same tick.
package cloth
