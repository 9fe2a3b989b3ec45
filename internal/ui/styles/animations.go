// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"time"
)

// =============================================================================
// SPINNER ANIMATIONS
// =============================================================================

// SpinnerConfig holds the configuration for a spinner animation.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// Duration returns the duration for each frame.
func (s SpinnerConfig) Duration() time.Duration {
	if s.FPS <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(s.FPS)
}

// DotsSpinner is the top bar activity indicator while answers stream. Its
// ticks also advance the pending pulse.
var DotsSpinner = SpinnerConfig{
	Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
	FPS:    6,
}

// =============================================================================
// PULSE
// =============================================================================

// PulsePhases is the number of distinct pulse styles.
const PulsePhases = 4

// PulseLevel maps a tick count onto a brightness level in [0, PulsePhases),
// rising then falling.
func PulseLevel(frame int) int {
	if frame < 0 {
		frame = -frame
	}
	cycle := 2*PulsePhases - 2
	step := frame % cycle
	if step >= PulsePhases {
		step = cycle - step
	}
	return step
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// ClearTransition is the default length of the clearing animation.
const ClearTransition = 300 * time.Millisecond

// ClearOffset is how far content blocks shift left while clearing.
const ClearOffset = 4
