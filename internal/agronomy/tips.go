package agronomy

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed tips.yaml
var tipsYAML []byte

// Tip is one sustainability practice and the crops it applies to
type Tip struct {
	Text  string   `yaml:"text"`
	Crops []string `yaml:"crops"`
}

// TipLibrary is the static list of sustainability practices
type TipLibrary struct {
	Fallback string `yaml:"fallback"`
	Tips     []Tip  `yaml:"tips"`
}

// DefaultTips loads the embedded tip library
func DefaultTips() (*TipLibrary, error) {
	return LoadTips(tipsYAML)
}

// LoadTips parses a YAML tip library
func LoadTips(data []byte) (*TipLibrary, error) {
	var lib TipLibrary
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("agronomy: failed to parse tip library: %w", err)
	}
	if lib.Fallback == "" {
		return nil, fmt.Errorf("agronomy: tip library has no fallback")
	}
	return &lib, nil
}

// ForCrop returns the tips applicable to a crop, in library order
func (l *TipLibrary) ForCrop(cropType string) []string {
	key := normalizeCrop(cropType)
	var out []string
	for _, t := range l.Tips {
		for _, c := range t.Crops {
			if normalizeCrop(c) == key {
				out = append(out, t.Text)
				break
			}
		}
	}
	return out
}

// Pick draws one applicable tip, or the fallback when none applies
func (l *TipLibrary) Pick(cropType string, rnd RandomSource) string {
	matches := l.ForCrop(cropType)
	if len(matches) == 0 {
		return l.Fallback
	}
	return matches[rnd.IntN(len(matches))]
}
