package models

import (
	"fmt"
	"strings"
)

// ParsePoleType accepts the code ("concrete_7m") or a loose label
// ("Concrete 7m"). Empty input gives the default pole.
func ParsePoleType(input string) (PoleType, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.NewReplacer(" ", "_", ".", "_", "-", "_").Replace(normalized)
	switch normalized {
	case "":
		return PoleConcrete7m, nil
	case "concrete_7m", "concrete7m":
		return PoleConcrete7m, nil
	case "concrete_7m_reinforced", "concrete7mreinforced":
		return PoleConcrete7mReinforced, nil
	case "concrete_9m", "concrete9m":
		return PoleConcrete9m, nil
	case "concrete_12m", "concrete12m":
		return PoleConcrete12m, nil
	case "metal_4_2m", "metal_4m", "metal4m":
		return PoleMetal4m, nil
	case "metal_6m", "metal6m":
		return PoleMetal6m, nil
	case "metal_9m", "metal9m":
		return PoleMetal9m, nil
	default:
		return "", fmt.Errorf("unknown pole type %q", input)
	}
}

func ParsePhase(input string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "null", "none":
		return PhaseNone, nil
	case "1", "l1":
		return Phase1, nil
	case "2", "l2":
		return Phase2, nil
	case "3", "l3":
		return Phase3, nil
	default:
		return PhaseNone, fmt.Errorf("unknown phase %q", input)
	}
}
