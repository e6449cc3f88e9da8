// Package serial abstracts the serial link to the actuator board.
//
// Port is the narrow interface the actuator channel needs; the real
// implementation is go.bug.st/serial, the fake one allows testing the
// channel without hardware. Discovery enumerates candidate ports by
// USB description keywords.
package serial
