// Package monitor is the orchestrator: a fixed-interval poll loop that
// pulls readings from the recognizer, feeds the debounce machine, and on
// a confirmed change writes the state file and drives the actuator.
// Failures below the loop are logged and retried; nothing short of a stop
// signal terminates a running monitor.
package monitor
