// Package actuator owns the serial link to the alignment board and keeps
// it usable against a flaky peripheral: it detects silent disconnects,
// retries commands with a fixed backoff, waits for acknowledgments within
// bounded windows, and reconnects transparently.
//
// The channel is a two-state machine (Disconnected/Connected) over an
// injected serial port, so the protocol logic is testable without a
// real device.
package actuator
