package virtual

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultBufferFraction is the share of the viewport height kept revealed
// above and below the viewport.
const DefaultBufferFraction = 0.2

// DefaultMaxForcedPasses caps the passes of a single tick in forced layout
// mode.
const DefaultMaxForcedPasses = 8

// Config controls the engine. The zero value is not useful; start from
// DefaultConfig.
type Config struct {
	BufferFraction        float64 `yaml:"buffer_fraction"`
	DefaultHeightEstimate float64 `yaml:"default_height_estimate"`

	// UseLocking prefers display locks over containment for hiding.
	UseLocking bool `yaml:"use_locking"`
	// UseColorDebug colours elements instead of hiding them when locking is
	// off.
	UseColorDebug bool `yaml:"use_color_debug"`
	// UseIntersection drives ticks from intersection changes of the
	// boundary elements instead of scroll events.
	UseIntersection bool `yaml:"use_intersection"`
	// UseForcedLayouts loops inside a tick, forcing host layouts, until the
	// revealed bounds stop changing.
	UseForcedLayouts bool `yaml:"use_forced_layouts"`
	MaxForcedPasses  int  `yaml:"max_forced_passes"`

	// Debug turns invariant warnings into panics and enables per-tick traces.
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		BufferFraction:        DefaultBufferFraction,
		DefaultHeightEstimate: DefaultHeightEstimate,
		UseLocking:            true,
		MaxForcedPasses:       DefaultMaxForcedPasses,
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks ranges.
func (c Config) Validate() error {
	if c.BufferFraction < 0 {
		return fmt.Errorf("%w: buffer_fraction must be >= 0, got %g", ErrInvalidConfig, c.BufferFraction)
	}
	if c.DefaultHeightEstimate <= 0 {
		return fmt.Errorf("%w: default_height_estimate must be > 0, got %g", ErrInvalidConfig, c.DefaultHeightEstimate)
	}
	if c.MaxForcedPasses < 1 {
		return fmt.Errorf("%w: max_forced_passes must be >= 1, got %d", ErrInvalidConfig, c.MaxForcedPasses)
	}
	return nil
}

// Setting describes one query-settable key for status displays.
type Setting struct {
	Key   string
	Help  string
	Value string
}

type setter struct {
	key   string
	help  string
	apply func(c *Config, raw string) error
	get   func(c Config) string
}

var setters = []setter{
	{"debug", "Emit lots of debug info", boolSetter(func(c *Config) *bool { return &c.Debug }), func(c Config) string { return flagValue(c.Debug) }},
	{"useLocking", "Whether to lock elements or just change their color", boolSetter(func(c *Config) *bool { return &c.UseLocking }), func(c Config) string { return flagValue(c.UseLocking) }},
	{"useColorDebug", "Colour elements instead of hiding them when locking is off", boolSetter(func(c *Config) *bool { return &c.UseColorDebug }), func(c Config) string { return flagValue(c.UseColorDebug) }},
	{"useIntersection", "Use intersection observers on the boundary elements", boolSetter(func(c *Config) *bool { return &c.UseIntersection }), func(c Config) string { return flagValue(c.UseIntersection) }},
	{"useForcedLayouts", "Keep forcing layouts until everything is correct before yielding", boolSetter(func(c *Config) *bool { return &c.UseForcedLayouts }), func(c Config) string { return flagValue(c.UseForcedLayouts) }},
	{"bufferFraction", "Fraction of the viewport height revealed above and below it", func(c *Config, raw string) error {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		c.BufferFraction = v
		return nil
	}, func(c Config) string { return strconv.FormatFloat(c.BufferFraction, 'g', -1, 64) }},
}

func boolSetter(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, raw string) error {
		v, err := parseFlag(raw)
		if err != nil {
			return err
		}
		*field(c) = v
		return nil
	}
}

// parseFlag accepts integers (non-zero is true) as well as Go booleans.
func parseFlag(raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return n != 0, nil
	}
	return strconv.ParseBool(raw)
}

func flagValue(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// ParseQuery applies a raw query string such as "debug=1&useLocking=0" on top
// of c. A leading '?' or a full URL is accepted.
func (c *Config) ParseQuery(raw string) error {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[i+1:]
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return fmt.Errorf("failed to parse query: %w", err)
	}
	return c.ApplyQuery(values)
}

// ApplyQuery sets every known key present in values. Unknown keys are
// ignored.
func (c *Config) ApplyQuery(values url.Values) error {
	for _, s := range setters {
		if !values.Has(s.key) {
			continue
		}
		if err := s.apply(c, values.Get(s.key)); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, s.key, err)
		}
	}
	return c.Validate()
}

// Settings lists the query-settable keys with their help and current value.
func (c Config) Settings() []Setting {
	out := make([]Setting, 0, len(setters))
	for _, s := range setters {
		out = append(out, Setting{Key: s.key, Help: s.help, Value: s.get(c)})
	}
	return out
}
