// Package observability provides event logging, metrics calculation, and
// alerting for the task manager. Engine events are persisted as JSON Lines
// and metrics are derived on demand from the log; alerts combine the log
// with the engine's current tasks.
package observability
