package providers

import (
	"io"
	"os"
	"path/filepath"
	"tad/internal/structures"

	"github.com/rs/zerolog"
)

// TypeEnum tags a log line with the subsystem it belongs to. App and store
// lines go to app.log, scan lines to scan.log.
type TypeEnum uint8

const (
	TypeApp TypeEnum = iota
	TypeScan
	TypeStore
	TypeHTTP
)

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

type LogProvider struct {
	app   zerolog.Logger
	scan  zerolog.Logger
	files []*os.File
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, err
	}

	mode := os.FileMode(conf.Logger.Mode)
	appFile, err := os.OpenFile(filepath.Join(conf.Logger.Dir, "app.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, mode)
	if err != nil {
		return nil, err
	}
	scanFile, err := os.OpenFile(filepath.Join(conf.Logger.Dir, "scan.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, mode)
	if err != nil {
		appFile.Close()
		return nil, err
	}

	appOut := io.Writer(appFile)
	scanOut := io.Writer(scanFile)
	if conf.Debug {
		console := zerolog.ConsoleWriter{Out: os.Stderr}
		appOut = zerolog.MultiLevelWriter(appFile, console)
		scanOut = zerolog.MultiLevelWriter(scanFile, console)
	}

	return &LogProvider{
		app:   zerolog.New(appOut).Level(level).With().Timestamp().Logger(),
		scan:  zerolog.New(scanOut).Level(level).With().Timestamp().Logger(),
		files: []*os.File{appFile, scanFile},
	}, nil
}

func (lp *LogProvider) logger(t TypeEnum) *zerolog.Logger {
	if t == TypeScan {
		return &lp.scan
	}
	return &lp.app
}

func typeName(t TypeEnum) string {
	switch t {
	case TypeScan:
		return "scan"
	case TypeStore:
		return "store"
	case TypeHTTP:
		return "http"
	default:
		return "app"
	}
}

func (lp *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	lp.logger(t).Error().Str("type", typeName(t)).Msgf(format, args...)
}

func (lp *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	lp.logger(t).Warn().Str("type", typeName(t)).Msgf(format, args...)
}

func (lp *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	lp.logger(t).Info().Str("type", typeName(t)).Msgf(format, args...)
}

func (lp *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	lp.logger(t).Debug().Str("type", typeName(t)).Msgf(format, args...)
}

func (lp *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	lp.logger(t).Fatal().Str("type", typeName(t)).Msgf(format, args...)
}

func (lp *LogProvider) Close() {
	for _, f := range lp.files {
		_ = f.Close()
	}
}
