package gcode

import "strings"

// Detected holds acceleration and jerk values found in a document.
type Detected struct {
	// Accel is the largest M204 S/P/T value
	Accel    float64 `json:"accel"`
	HasAccel bool    `json:"has_accel"`

	// Jerk is the largest M205 X/Y value
	Jerk    float64 `json:"jerk"`
	HasJerk bool    `json:"has_jerk"`
}

// ScanBaseline walks every line of the document and records the largest
// acceleration and jerk the slicer emitted. Hosts that cannot supply the
// slicer settings use this as the value to restore.
func ScanBaseline(d *Document) Detected {
	var det Detected
	for _, block := range d.Blocks {
		for _, line := range strings.Split(block, "\n") {
			switch {
			case IsCommand(line, AccelCommand):
				cmd, _ := ParseCommand(line)
				for _, letter := range []byte{'S', 'P', 'T'} {
					if v, ok := cmd.Arg(letter); ok && (!det.HasAccel || v > det.Accel) {
						det.Accel, det.HasAccel = v, true
					}
				}
			case IsCommand(line, JerkCommand):
				cmd, _ := ParseCommand(line)
				for _, letter := range []byte{'X', 'Y'} {
					if v, ok := cmd.Arg(letter); ok && (!det.HasJerk || v > det.Jerk) {
						det.Jerk, det.HasJerk = v, true
					}
				}
			}
		}
	}
	return det
}
