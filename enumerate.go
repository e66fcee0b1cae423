package serialstream

import (
	bugst "go.bug.st/serial"
)

// allow tests to override enumeration
var getPortsList = bugst.GetPortsList

// ListPorts returns the device names of the serial ports present on the
// system.
func ListPorts() ([]string, error) {
	return getPortsList()
}
