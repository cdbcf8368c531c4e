// Package config handles game configuration loading and management.
package config

// Config holds all game settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	World    WorldConfig    `yaml:"world"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	Wireframe  bool `yaml:"wireframe"`
}

// WorldConfig holds terrain and chunk streaming settings.
type WorldConfig struct {
	Seed          int64  `yaml:"seed"`
	ViewDistance  int    `yaml:"view_distance"`  // chunks in each horizontal direction
	ChunkCapacity int    `yaml:"chunk_capacity"` // resident chunk limit
	DBPath        string `yaml:"db_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		World: WorldConfig{
			Seed:          1,
			ViewDistance:  4,
			ChunkCapacity: 128,
			DBPath:        "world.db",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
