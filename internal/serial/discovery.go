package serial

import (
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// descriptionKeywords identify actuator boards by their USB product
// description, matching what the firmware ships on (genuine Arduinos and
// CH340 clones both show up under these).
var descriptionKeywords = []string{"arduino", "ch340", "usb"}

// Discover enumerates serial ports and returns the identifiers of likely
// actuator boards, in enumeration order. An empty result is not an error;
// the monitor simply runs without an actuator.
func Discover() ([]string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}

	var candidates []string

	for _, port := range ports {
		if matchesActuator(port.Product, port.IsUSB) {
			candidates = append(candidates, port.Name)
		}
	}

	return candidates, nil
}

// matchesActuator reports whether a port's USB product description looks
// like an actuator board.
func matchesActuator(product string, isUSB bool) bool {
	description := strings.ToLower(product)
	for _, keyword := range descriptionKeywords {
		if strings.Contains(description, keyword) {
			return true
		}
	}

	return isUSB
}
