package config

// DifficultyPreset names a CPU opponent strength for local play.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ParseDifficulty converts a flag value into a preset. Unknown or empty values
// map to normal.
func ParseDifficulty(s string) DifficultyPreset {
	switch DifficultyPreset(s) {
	case DifficultyEasy, DifficultyHard:
		return DifficultyPreset(s)
	default:
		return DifficultyNormal
	}
}

// ApplyDifficulty rewrites the AI tuning for a preset. Normal keeps whatever
// the loaded config says.
func ApplyDifficulty(cfg *AIConfig, preset DifficultyPreset) {
	cfg.Difficulty = preset
	switch preset {
	case DifficultyEasy:
		cfg.SpeedFactor = 0.4
		cfg.ReactionZone = 25
	case DifficultyHard:
		cfg.SpeedFactor = 0.85
		cfg.ReactionZone = 4
	}
}

// CPUSkill returns the effective speed factor for the current rally. The CPU
// sharpens slightly as the human pulls ahead.
func (c AIConfig) CPUSkill(humanScore, cpuScore int) float64 {
	lead := humanScore - cpuScore
	if lead <= 0 {
		return c.SpeedFactor
	}
	return clampF(c.SpeedFactor+0.05*float64(lead), 0, 1)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
