package structures

import "time"

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type AnalysisConfig struct {
	InboxDir     string        `yaml:"inboxDir" validate:"required|unixPath"`
	Extensions   []string      `yaml:"extensions"`
	Workers      int           `yaml:"workers"`
	ScanInterval time.Duration `yaml:"scanInterval" validate:"required|min:1"`
}

type Persistence struct {
	Backend      string        `yaml:"backend" validate:"required|in:file,sqlite"`
	FilePath     string        `yaml:"filePath"`
	SqlitePath   string        `yaml:"sqlitePath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"` // MB
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	Analysis    AnalysisConfig `yaml:"analysis"`
	WebServer   Server         `yaml:"webServer"`
	Persistence Persistence    `yaml:"persistence"`
	Logger      LoggerConfig   `yaml:"logger"`
	Cache       CacheConfig    `yaml:"cache"`
	Metrics     MetricsConfig  `yaml:"metrics"`
}
