// Package analysis characterizes recorded or live cloth runs.
//
//   - [PowerSpectrum], [DominantFrequency]: oscillation content of a metric
//     series, via go-dsp
//   - [Describe]: summary statistics of a series
//   - [Divergence]: growth rate of the separation between a run and a
//     slightly perturbed copy; negative means perturbations die out
//   - [Sweep]: one parameter varied across concurrent runs
//   - [MonteCarlo]: robustness of a scene to random initial displacements
//   - [TracePoint]: the path of a single grid point
package analysis
