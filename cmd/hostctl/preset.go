package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// Preset is a YAML pattern description pushed to the board as a series of
// protocol lines. Only the section matching the kind is sent.
type Preset struct {
	Kind   string `yaml:"kind"` // rings, center, spiral, grid
	Stride int    `yaml:"stride"`
	Mask   int    `yaml:"mask"`

	Rings struct {
		Inner  int `yaml:"inner"`
		Middle int `yaml:"middle"`
		Outer  int `yaml:"outer"`
	} `yaml:"rings"`

	Spiral struct {
		MaxRadius int `yaml:"maxRadius"`
		Turns     int `yaml:"turns"`
	} `yaml:"spiral"`

	Grid struct {
		PointSize int `yaml:"pointSize"`
		OffsetX   int `yaml:"offsetX"`
		OffsetY   int `yaml:"offsetY"`
	} `yaml:"grid"`
}

var kindCodes = map[string]int{
	"rings":  0,
	"center": 1,
	"spiral": 2,
	"grid":   3,
}

// Lines renders the preset as protocol commands: kind first so the slot
// opcodes land on the right parameters.
func (p *Preset) Lines() ([]string, error) {
	code, ok := kindCodes[p.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown pattern kind %q", p.Kind)
	}
	lines := []string{fmt.Sprintf("P%d", code)}

	switch p.Kind {
	case "rings":
		lines = append(lines,
			fmt.Sprintf("I%d", p.Rings.Inner),
			fmt.Sprintf("M%d", p.Rings.Middle),
			fmt.Sprintf("O%d", p.Rings.Outer))
	case "spiral":
		lines = append(lines,
			fmt.Sprintf("I%d", p.Spiral.MaxRadius),
			fmt.Sprintf("M%d", p.Spiral.Turns))
	case "grid":
		lines = append(lines,
			fmt.Sprintf("I%d", p.Grid.PointSize),
			fmt.Sprintf("M%d", p.Grid.OffsetX),
			fmt.Sprintf("O%d", p.Grid.OffsetY))
	}
	if p.Stride > 0 {
		lines = append(lines, fmt.Sprintf("S%d", p.Stride))
	}
	if p.Mask > 0 {
		lines = append(lines, fmt.Sprintf("K%d", p.Mask))
	}
	return lines, nil
}

func loadPreset(path string) (*Preset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Preset
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &p, nil
}

func patternCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "pattern",
		Short: "Push a YAML pattern preset to the board",
		RunE: func(*cobra.Command, []string) error {
			p, err := loadPreset(file)
			if err != nil {
				return err
			}
			lines, err := p.Lines()
			if err != nil {
				return err
			}
			return sendLines(lines...)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "pattern.yaml", "preset file")
	return cmd
}
