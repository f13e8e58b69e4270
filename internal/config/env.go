package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// envOverride binds MPICALC_<key> to the flags it stands in for. set stores
// the raw value and leaves the field untouched when it does not parse.
type envOverride struct {
	key   string
	flags []string
	set   func(c *AppConfig, raw string)
}

func intEnv(field func(*AppConfig) *int) func(*AppConfig, string) {
	return func(c *AppConfig, raw string) {
		if n, err := strconv.Atoi(raw); err == nil {
			*field(c) = n
		}
	}
}

func durationEnv(field func(*AppConfig) *time.Duration) func(*AppConfig, string) {
	return func(c *AppConfig, raw string) {
		if d, err := time.ParseDuration(raw); err == nil {
			*field(c) = d
		}
	}
}

func stringEnv(field func(*AppConfig) *string) func(*AppConfig, string) {
	return func(c *AppConfig, raw string) { *field(c) = raw }
}

// boolEnv accepts true/1/yes and false/0/no in any case.
func boolEnv(field func(*AppConfig) *bool) func(*AppConfig, string) {
	return func(c *AppConfig, raw string) {
		switch strings.ToLower(raw) {
		case "true", "1", "yes":
			*field(c) = true
		case "false", "0", "no":
			*field(c) = false
		}
	}
}

var envOverrides = []envOverride{
	{"BACKEND", []string{"backend"}, stringEnv(func(c *AppConfig) *string { return &c.Backend })},
	{"TIMEOUT", []string{"timeout"}, durationEnv(func(c *AppConfig) *time.Duration { return &c.Timeout })},
	{"MAX_DIGITS", []string{"max-digits"}, intEnv(func(c *AppConfig) *int { return &c.MaxDigits })},
	{"CONCURRENCY", []string{"concurrency"}, intEnv(func(c *AppConfig) *int { return &c.Concurrency })},
	{"BENCH_LIMBS", []string{"bench-limbs"}, func(c *AppConfig, raw string) {
		if limbs, err := parseIntList(raw); err == nil && len(limbs) > 0 {
			c.BenchLimbs = limbs
		}
	}},
	{"OUTPUT", []string{"o", "output"}, stringEnv(func(c *AppConfig) *string { return &c.OutputFile })},
	{"LOG_LEVEL", []string{"log-level"}, stringEnv(func(c *AppConfig) *string { return &c.LogLevel })},
	{"SERVE", []string{"serve"}, stringEnv(func(c *AppConfig) *string { return &c.Serve })},
	{"VERBOSE", []string{"v", "verbose"}, boolEnv(func(c *AppConfig) *bool { return &c.Verbose })},
	{"DETAILS", []string{"d", "details"}, boolEnv(func(c *AppConfig) *bool { return &c.Details })},
	{"QUIET", []string{"q", "quiet"}, boolEnv(func(c *AppConfig) *bool { return &c.Quiet })},
	{"FULL", []string{"full"}, boolEnv(func(c *AppConfig) *bool { return &c.ShowValue })},
	{"HEX", []string{"hex"}, boolEnv(func(c *AppConfig) *bool { return &c.Hex })},
	{"NO_COLOR", []string{"no-color"}, boolEnv(func(c *AppConfig) *bool { return &c.NoColor })},
}

// applyEnvOverrides fills every field whose flags were not given on the
// command line from its MPICALC_ variable, so flags win over the environment
// and the environment over defaults.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	given := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { given[f.Name] = true })

	for _, o := range envOverrides {
		if anyGiven(given, o.flags) {
			continue
		}
		if raw := os.Getenv(EnvPrefix + o.key); raw != "" {
			o.set(config, raw)
		}
	}
}

func anyGiven(given map[string]bool, names []string) bool {
	for _, n := range names {
		if given[n] {
			return true
		}
	}
	return false
}
