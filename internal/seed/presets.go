package seed

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preset describes how much demo data to create. Rates are per-pair
// probabilities in [0, 1].
type Preset struct {
	Name              string   `yaml:"name"`
	Users             int      `yaml:"users"`
	HighlightsPerUser int      `yaml:"highlights_per_user"`
	Hashtags          []string `yaml:"hashtags"`
	ExpiredRatio      float64  `yaml:"expired_ratio"`
	SubscriptionRate  float64  `yaml:"subscription_rate"`
	ViewRate          float64  `yaml:"view_rate"`
	AppreciationRate  float64  `yaml:"appreciation_rate"`
	CommentRate       float64  `yaml:"comment_rate"`
}

var defaultHashtags = []string{
	"skate", "kickflip", "surf", "snowboard", "bmx", "parkour",
	"goal", "dunk", "speedrun", "clutch", "fail", "music", "dance",
}

// Presets are the built-in seeding profiles.
var Presets = map[string]Preset{
	"small": {
		Name:              "small",
		Users:             8,
		HighlightsPerUser: 3,
		Hashtags:          defaultHashtags,
		ExpiredRatio:      0.1,
		SubscriptionRate:  0.3,
		ViewRate:          0.6,
		AppreciationRate:  0.4,
		CommentRate:       0.1,
	},
	"default": {
		Name:              "default",
		Users:             40,
		HighlightsPerUser: 5,
		Hashtags:          defaultHashtags,
		ExpiredRatio:      0.15,
		SubscriptionRate:  0.15,
		ViewRate:          0.4,
		AppreciationRate:  0.25,
		CommentRate:       0.05,
	},
	"busy": {
		Name:              "busy",
		Users:             150,
		HighlightsPerUser: 8,
		Hashtags:          defaultHashtags,
		ExpiredRatio:      0.2,
		SubscriptionRate:  0.05,
		ViewRate:          0.2,
		AppreciationRate:  0.1,
		CommentRate:       0.02,
	},
}

// LookupPreset returns a built-in preset by name.
func LookupPreset(name string) (Preset, error) {
	p, ok := Presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q", name)
	}
	return p, nil
}

// ParsePreset decodes a YAML preset. Missing fields fall back to the
// "default" preset.
func ParsePreset(raw []byte) (Preset, error) {
	p := Presets["default"]
	p.Name = "custom"
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Preset{}, fmt.Errorf("decode preset: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// LoadPresetFile reads a YAML preset from path.
func LoadPresetFile(path string) (Preset, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return Preset{}, err
	}
	return ParsePreset(raw)
}

// Validate rejects negative sizes and rates outside [0, 1].
func (p Preset) Validate() error {
	if p.Users < 0 || p.HighlightsPerUser < 0 {
		return errors.New("preset sizes must not be negative")
	}
	rates := map[string]float64{
		"expired_ratio":     p.ExpiredRatio,
		"subscription_rate": p.SubscriptionRate,
		"view_rate":         p.ViewRate,
		"appreciation_rate": p.AppreciationRate,
		"comment_rate":      p.CommentRate,
	}
	for name, v := range rates {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	return nil
}
