package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagWriteConfig = flag.String("write-config", "", "Write the effective config to this path and exit")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagDepth       = flag.Float64("depth", 0, "Gradient z magnitude (default 0.5)")
	flagChannel     = flag.String("channel", "", "Height channel: red, green, blue, alpha or luma")
	flagParallel    = flag.Bool("parallel", false, "Build tables and pixels concurrently")
	flagWorkers     = flag.Int("workers", 0, "Worker count for -parallel (0 = GOMAXPROCS)")
	flagCodec       = flag.String("codec", "", "Image backend: go or sdl")
	flagOutDir      = flag.String("out-dir", "", "Directory for output files")
	flagSuffix      = flag.String("suffix", "", "Output suffix replacing the input extension")
	flagVerify      = flag.Bool("verify", false, "Check that every output pixel decodes to a unit normal")
	flagLogFile     = flag.String("log-file", "", "Also log to this rotating file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the positional arguments: the input files.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// WriteConfigPath returns the --write-config target, if any.
func WriteConfigPath() string {
	return *flagWriteConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagDepth != 0 {
		cfg.Conversion.Depth = *flagDepth
	}
	if *flagChannel != "" {
		cfg.Conversion.Channel = *flagChannel
	}
	if *flagParallel {
		cfg.Conversion.Parallel = true
	}
	if *flagWorkers > 0 {
		cfg.Conversion.Workers = *flagWorkers
	}
	if *flagCodec != "" {
		cfg.Codec.Backend = *flagCodec
	}
	if *flagOutDir != "" {
		cfg.Output.Dir = *flagOutDir
	}
	if *flagSuffix != "" {
		cfg.Output.Suffix = *flagSuffix
	}
	if *flagVerify {
		cfg.Output.Verify = true
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
