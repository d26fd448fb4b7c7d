package agronomy

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cropadvisor/backend/internal/domain"
)

//go:embed crops.yaml
var cropsYAML []byte

// Catalog is the read-only crop reference table keyed by crop name
type Catalog struct {
	profiles map[string]domain.CropProfile
	names    []string
}

type catalogFile struct {
	Crops []domain.CropProfile `yaml:"crops"`
}

// DefaultCatalog loads the embedded crop table
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(cropsYAML)
}

// LoadCatalog parses and validates a YAML crop table
func LoadCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("agronomy: failed to parse crop table: %w", err)
	}
	if len(file.Crops) == 0 {
		return nil, fmt.Errorf("agronomy: crop table is empty")
	}

	c := &Catalog{profiles: make(map[string]domain.CropProfile, len(file.Crops))}
	for _, p := range file.Crops {
		key := normalizeCrop(p.Name)
		if err := validateProfile(p); err != nil {
			return nil, fmt.Errorf("agronomy: invalid profile %q: %w", p.Name, err)
		}
		if _, dup := c.profiles[key]; dup {
			return nil, fmt.Errorf("agronomy: duplicate profile %q", p.Name)
		}
		p.Name = key
		c.profiles[key] = p
		c.names = append(c.names, key)
	}
	sort.Strings(c.names)
	return c, nil
}

// Lookup returns the profile for a crop key or an *domain.UnknownCropError
func (c *Catalog) Lookup(cropType string) (domain.CropProfile, error) {
	p, ok := c.profiles[normalizeCrop(cropType)]
	if !ok {
		return domain.CropProfile{}, &domain.UnknownCropError{CropType: cropType}
	}
	return p, nil
}

// Names returns the supported crop keys in sorted order
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

func normalizeCrop(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func validateProfile(p domain.CropProfile) error {
	if normalizeCrop(p.Name) == "" {
		return fmt.Errorf("missing name")
	}
	if p.WaterRequirement <= 0 {
		return fmt.Errorf("water_requirement must be positive")
	}
	if _, ok := p.StageCoefficients[domain.DefaultGrowthStage]; !ok {
		return fmt.Errorf("missing %s stage coefficient", domain.DefaultGrowthStage)
	}
	ranges := map[string]domain.Range{
		"nitrogen":    p.Nitrogen,
		"phosphorus":  p.Phosphorus,
		"potassium":   p.Potassium,
		"ph":          p.PH,
		"temperature": p.Temperature,
		"humidity":    p.Humidity,
		"sunlight":    p.Sunlight,
	}
	for name, r := range ranges {
		if !(r.Min < r.Optimal && r.Optimal < r.Max) {
			return fmt.Errorf("%s range must satisfy min < optimal < max", name)
		}
	}
	for name, r := range map[string]domain.Range{"nitrogen": p.Nitrogen, "phosphorus": p.Phosphorus, "potassium": p.Potassium} {
		if r.Min <= 0 {
			return fmt.Errorf("%s minimum must be positive", name)
		}
	}
	if p.Yield.Average <= 0 || p.Yield.Maximum < p.Yield.Average {
		return fmt.Errorf("yield potential must satisfy 0 < average <= maximum")
	}
	return nil
}
