// Package sim provides the discrete-event kernel for the fog simulator.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - event.go: the closed EventTag set and the Event message
//   - simulator.go: Engine, entity registration and the dispatch loop
//   - timer.go: RepeatingTimer, the drift-free periodic tick
//
// # Architecture
//
// The kernel knows nothing about fog devices or applications. Domain
// packages build on it:
//   - sim/application/: application graph (modules, edges, loops)
//   - sim/entity/: fog devices, sensors, actuators and tuples
//   - sim/topology/: device tree construction and path latency
//   - sim/placement/: module mapping and placement resolution
//   - sim/monitor/: per-run aggregators (network usage, loop delays)
//   - sim/controller/: submission, resource management and shutdown
//   - sim/report/: result files
//   - sim/trace/: decision trace recording
//
// Time is virtual and single-threaded. Exactly one event is processed at a
// time; ties at the same instant are broken by scheduling order, except that
// STOP_SIMULATION always runs last.
package sim
