// Command handmon watches the simulator's handedness indicator through an
// external recognizer and keeps a state file and a serial actuator in sync
// with the confirmed value.
package main

import "github.com/simtools/handmon/cmd/handmon/cmd"

func main() {
	cmd.Execute()
}
