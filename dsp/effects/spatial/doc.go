// Package spatial provides the stereo placement stages of the mixer:
// the pan/balance law and a mid/side stereo widener.
//
// The pan law attenuates only the side the control moves away from, so a
// centred control leaves both channels at unity gain.
package spatial
