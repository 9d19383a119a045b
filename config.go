// seehuhn.de/go/svga - SVGA animation playback
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package svga

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FillMode selects the frame shown after the animation completes.
type FillMode string

// These are the supported fill modes.
const (
	FillForwards  FillMode = "forwards"
	FillBackwards FillMode = "backwards"
)

// PlayMode selects the direction of playback.
type PlayMode string

// These are the supported play modes.  PlayFallbacks is an alias for
// PlayReverse, used by older configuration files.
const (
	PlayForwards  PlayMode = "forwards"
	PlayReverse   PlayMode = "reverse"
	PlayFallbacks PlayMode = "fallbacks"
)

// ErrFrameRange is returned for configurations where the playback range is
// empty or negative.
var ErrFrameRange = errors.New("invalid frame range")

// Config holds the playback options of a [Player].
// The zero value plays the whole animation forwards, forever.
type Config struct {
	// Loop is the number of passes.  Zero or a negative value repeats the
	// animation forever.
	Loop int `yaml:"loop"`

	FillMode FillMode `yaml:"fillMode"`
	PlayMode PlayMode `yaml:"playMode"`

	// StartFrame and EndFrame restrict playback to a range of frames.
	// An EndFrame of zero stands for the last frame of the animation.
	StartFrame int `yaml:"startFrame"`
	EndFrame   int `yaml:"endFrame"`

	// LoopStartFrame is the frame at which the second and later passes
	// begin.
	LoopStartFrame int `yaml:"loopStartFrame"`

	// CacheFrames keeps rendered frames in memory.
	CacheFrames bool `yaml:"cacheFrames"`

	// UseVisibilityGate suppresses drawing while the player is marked as
	// not visible, see [Player.SetVisible].
	UseVisibilityGate bool `yaml:"useVisibilityGate"`

	// UseAuxiliaryTickSource drives the animation from a timer goroutine,
	// instead of from calls to [Player.Frame].
	UseAuxiliaryTickSource bool `yaml:"useAuxiliaryTickSource"`
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.FillMode {
	case "", FillForwards, FillBackwards:
	default:
		return fmt.Errorf("unknown fill mode %q", c.FillMode)
	}
	switch c.PlayMode {
	case "", PlayForwards, PlayReverse, PlayFallbacks:
	default:
		return fmt.Errorf("unknown play mode %q", c.PlayMode)
	}
	if c.StartFrame < 0 || c.EndFrame < 0 || c.LoopStartFrame < 0 {
		return fmt.Errorf("%w: negative frame number", ErrFrameRange)
	}
	if c.EndFrame > 0 && c.StartFrame > c.EndFrame {
		return fmt.Errorf("%w: start frame %d after end frame %d",
			ErrFrameRange, c.StartFrame, c.EndFrame)
	}
	return nil
}

func (c *Config) reverse() bool {
	return c.PlayMode == PlayReverse || c.PlayMode == PlayFallbacks
}

// LoadConfig reads a player configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
