// Package widget implements the component core of the server-side
// widget engine: component instances with their hook chains, the
// reconciliation algorithm that preserves stateful identity across
// otherwise pure re-renders, and route-addressed dispatch of events,
// task completions, and mouse-capture transitions.
//
// The engine is single-threaded with respect to the tree: exactly one
// logical driver (typically a pkg/server session loop) may call into
// an Engine at a time. Asynchronous work lives exclusively inside
// with_task hooks, which hand work to the process task queue and are
// re-entered later through Engine.TaskCompleted on the driver.
package widget
