package logger

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envLocal = "local"

var global atomic.Pointer[zap.Logger]

func init() {
	global.Store(zap.NewNop())
}

// SetupLogger builds the process logger and installs it as the package global.
// Local environments get a colored console encoder, everything else writes JSON to stdout.
func SetupLogger(env string, level string) *zap.Logger {
	lvl := levelFromString(level)

	var l *zap.Logger
	if env == envLocal {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		built, err := cfg.Build()
		if err != nil {
			built = zap.NewExample()
		}
		l = built
	} else {
		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(os.Stdout), lvl)
		l = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
	}

	l = l.With(zap.String("env", env))
	global.Store(l)

	return l
}

func levelFromString(l string) zapcore.Level {
	switch l {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func Logger() *zap.Logger {
	return global.Load()
}

func Debug(msg string, fields ...zap.Field) {
	global.Load().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	global.Load().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	global.Load().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	global.Load().Error(msg, fields...)
}

func Sync() error {
	return global.Load().Sync()
}
