package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugar = zap.NewNop().Sugar()

// Init builds the process logger. Development gets a colored console encoder at debug
// level, every other environment gets JSON at info level.
func Init(environment string) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	var encoder zapcore.Encoder
	if strings.EqualFold(environment, "development") {
		level = zapcore.DebugLevel
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), level)
	sugar = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel)).Sugar()
}

// Sync flushes buffered entries.
func Sync() {
	_ = sugar.Sync()
}

func Debug(msg string, args ...any) { sugar.Debugw(msg, fields(args)...) }
func Info(msg string, args ...any)  { sugar.Infow(msg, fields(args)...) }
func Warn(msg string, args ...any)  { sugar.Warnw(msg, fields(args)...) }
func Error(msg string, args ...any) { sugar.Errorw(msg, fields(args)...) }
func Fatal(msg string, args ...any) { sugar.Fatalw(msg, fields(args)...) }

// fields turns loose arguments into key/value pairs. Callers mostly pass
// ("key", value, ...) but a bare error or value is accepted too.
func fields(args []any) []any {
	out := make([]any, 0, len(args)+1)
	for i := 0; i < len(args); i++ {
		key, isKey := args[i].(string)
		if isKey && i+1 < len(args) {
			out = append(out, key, args[i+1])
			i++
			continue
		}
		if err, ok := args[i].(error); ok {
			out = append(out, "error", err)
			continue
		}
		out = append(out, fmt.Sprintf("arg%d", i), args[i])
	}
	return out
}
