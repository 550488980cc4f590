package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/config"
)

var level = zap.NewAtomicLevel()

// Init replaces the global zap logger. Production writes JSON to stdout and,
// when conf.File is set, to a rotated file as well.
func Init(env string, conf *config.LogConfig) error {
	if err := SetLevel(conf.Level); err != nil {
		return err
	}

	var encoder zapcore.Encoder
	if env == "production" {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	sinks := []zapcore.WriteSyncer{zapcore.Lock(os.Stdout)}
	if conf.File != "" {
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   conf.File,
			MaxSize:    conf.MaxSizeMB,
			MaxBackups: conf.MaxBackups,
			MaxAge:     conf.MaxAgeDays,
			Compress:   true,
		}))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)
	zap.ReplaceGlobals(zap.New(core, zap.AddCaller()))

	return nil
}

func SetLevel(name string) error {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return fmt.Errorf("invalid log level %q -> %w", name, err)
	}
	level.SetLevel(l)

	return nil
}
