package config

const (
	defaultBaseDir     = "data"
	defaultDestination = "kneel"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
)

var defaultSources = []string{"Collecting", "Pickup", "Shooting Video", "Burst", "Detonate"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	sources := make([]string, len(defaultSources))
	copy(sources, defaultSources)
	return Config{
		Paths: Paths{
			BaseDir: defaultBaseDir,
		},
		Relocation: Relocation{
			Sources:     sources,
			Destination: defaultDestination,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
