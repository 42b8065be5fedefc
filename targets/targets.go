package targets

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

//go:embed targets.yaml
var rawTargets []byte

var targets Targets
var ErrUnknownTarget = errors.New("unknown target")

func All() Targets {
	return targets
}

type Targets []TargetInfo
type TargetInfo struct {
	Series       string   `yaml:"series"`
	Chips        []string `yaml:"chips"`
	Architecture string   `yaml:"architecture"`
	Tags         []string `yaml:"tags"`
}

// BuildConstraint returns a //go:build expression selecting device.
func (t TargetInfo) BuildConstraint(device string) string {
	tags := slices.Clone(t.Tags)
	if device = strings.ToLower(device); !slices.Contains(tags, device) {
		tags = append(tags, device)
	}
	return strings.Join(tags, " && ")
}

func (t Targets) FindBySeries(name string) (TargetInfo, error) {
	for _, target := range t {
		if target.Series == strings.ToLower(name) {
			return target, nil
		}
	}
	return TargetInfo{}, fmt.Errorf("%w: series %s", ErrUnknownTarget, name)
}

// FindByChip returns the family whose chip prefixes match name. The longest
// prefix wins.
func (t Targets) FindByChip(name string) (TargetInfo, error) {
	name = strings.ToLower(name)
	best, length := -1, 0
	for i, target := range t {
		for _, prefix := range target.Chips {
			if strings.HasPrefix(name, prefix) && len(prefix) > length {
				best, length = i, len(prefix)
			}
		}
	}
	if best < 0 {
		return TargetInfo{}, fmt.Errorf("%w: chip %s", ErrUnknownTarget, name)
	}
	return t[best], nil
}

func init() {
	var t struct {
		Elements []TargetInfo `yaml:"targets"`
	}
	if err := yaml.Unmarshal(rawTargets, &t); err != nil {
		panic(err)
	}

	targets = t.Elements
}
