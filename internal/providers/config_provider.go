package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"tad/internal/structures"

	"github.com/spf13/viper"
)

// DefaultExtensions is the allow-list of tachograph device file extensions
// scanned when the config does not override it.
var DefaultExtensions = []string{".ddd", ".tgd", ".esm", ".c1b", ".v1b"}

const defaultWorkers = 4

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "TAD_LOG_LEVEL")
	viper.BindEnv("analysis.inboxDir", "TAD_INBOX_DIR")
	viper.BindEnv("analysis.workers", "TAD_WORKERS")
	viper.BindEnv("analysis.scanInterval", "TAD_SCAN_INTERVAL")
	viper.BindEnv("persistence.backend", "TAD_PERSISTENCE_BACKEND")
	viper.BindEnv("persistence.saveInterval", "TAD_SAVE_INTERVAL")
	viper.BindEnv("cache.enabled", "TAD_CACHE_ENABLED")
	viper.BindEnv("cache.size", "TAD_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	if len(conf.Analysis.Extensions) == 0 {
		conf.Analysis.Extensions = DefaultExtensions
	}
	if conf.Analysis.Workers <= 0 {
		conf.Analysis.Workers = defaultWorkers
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "TachographAnalysisDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
