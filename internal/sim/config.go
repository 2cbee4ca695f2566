package sim

// RunConfig is the per-session tuning loaded from the config file. Zero
// values are filled from the difficulty preset by Normalize.
type RunConfig struct {
	Difficulty string `mapstructure:"difficulty"`
	Seed       int64  `mapstructure:"seed"`

	DayLengthSec float64 `mapstructure:"day_length_sec"`

	StartCityID    string `mapstructure:"start_city_id"`
	StartingShipID string `mapstructure:"starting_ship_id"`
	StartingMoney  int    `mapstructure:"starting_money"`
	MasterLives    int    `mapstructure:"master_lives"`

	// EventFreqMult scales market shock and disruption probabilities.
	EventFreqMult float64 `mapstructure:"event_freq_mult"`

	// PriceSpreadMult widens (>1) or narrows (<1) the player's effective
	// bid/ask spread. NPC trade is unaffected.
	PriceSpreadMult float64 `mapstructure:"price_spread_mult"`

	// BuyDiscounts maps a good category name to a price multiplier applied
	// on player purchases of that category, e.g. {"food": 0.9}.
	BuyDiscounts map[string]float64 `mapstructure:"buy_discounts"`

	AutosaveEveryDays int `mapstructure:"autosave_every_days"`
}

// difficultyPreset holds the knobs a difficulty level sets by default.
type difficultyPreset struct {
	startingMoney int
	masterLives   int
	eventFreq     float64
	priceSpread   float64
}

var presets = map[string]difficultyPreset{
	"easy":      {startingMoney: 1500, masterLives: 4, eventFreq: 0.8, priceSpread: 0.94},
	"normal":    {startingMoney: 1000, masterLives: 3, eventFreq: 1.0, priceSpread: 1.0},
	"hard":      {startingMoney: 700, masterLives: 2, eventFreq: 1.3, priceSpread: 1.06},
	"legendary": {startingMoney: 400, masterLives: 1, eventFreq: 1.6, priceSpread: 1.12},
}

// DefaultRunConfig is a normal-difficulty session with default pacing.
func DefaultRunConfig() RunConfig {
	cfg := RunConfig{Difficulty: "normal"}
	cfg.Normalize()
	return cfg
}

// Normalize fills unset fields from the difficulty preset and clamps the
// rest to sane values. Unknown difficulties fall back to normal.
func (cfg *RunConfig) Normalize() {
	p, ok := presets[cfg.Difficulty]
	if !ok {
		cfg.Difficulty = "normal"
		p = presets["normal"]
	}

	if cfg.StartingMoney <= 0 {
		cfg.StartingMoney = p.startingMoney
	}
	if cfg.MasterLives <= 0 {
		cfg.MasterLives = p.masterLives
	}
	if cfg.EventFreqMult <= 0 {
		cfg.EventFreqMult = p.eventFreq
	}
	if cfg.PriceSpreadMult <= 0 {
		cfg.PriceSpreadMult = p.priceSpread
	}
	if cfg.DayLengthSec <= 0 {
		cfg.DayLengthSec = DefaultDayLengthSec
	}
	if cfg.AutosaveEveryDays <= 0 {
		cfg.AutosaveEveryDays = 1
	}
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
}
