package utils

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel identifies a supported logging verbosity.
type LogLevel string

// Supported logging verbosities.
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat identifies a supported logger output encoding.
type LogFormat string

// Supported logger output encodings.
const (
	LogFormatStructured LogFormat = "structured"
	LogFormatConsole    LogFormat = "console"
)

const (
	unsupportedLogLevelTemplateConstant  = "unsupported log level %q: %w"
	unsupportedLogFormatTemplateConstant = "unsupported log format %q"
)

// LoggerOutputs bundles the diagnostic logger with the human facing console logger.
// The console logger is a no-op unless the console format is selected.
type LoggerOutputs struct {
	DiagnosticLogger *zap.Logger
	ConsoleLogger    *zap.Logger
}

// LoggerFactory builds zap loggers for the requested level and format.
type LoggerFactory struct{}

// NewLoggerFactory constructs a LoggerFactory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLoggerOutputs builds logger outputs writing to standard error.
func (factory *LoggerFactory) CreateLoggerOutputs(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (LoggerOutputs, error) {
	parsedLevel, levelError := zapcore.ParseLevel(string(requestedLogLevel))
	if levelError != nil {
		return LoggerOutputs{}, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel, levelError)
	}

	errorSink := zapcore.Lock(os.Stderr)

	switch requestedLogFormat {
	case LogFormatStructured:
		diagnosticCore := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), errorSink, parsedLevel)
		return LoggerOutputs{
			DiagnosticLogger: zap.New(diagnosticCore),
			ConsoleLogger:    zap.NewNop(),
		}, nil
	case LogFormatConsole:
		consoleEncoderConfiguration := zap.NewDevelopmentEncoderConfig()
		consoleEncoderConfiguration.EncodeLevel = zapcore.CapitalLevelEncoder
		diagnosticCore := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfiguration), errorSink, parsedLevel)
		consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfiguration), errorSink, parsedLevel)
		return LoggerOutputs{
			DiagnosticLogger: zap.New(diagnosticCore),
			ConsoleLogger:    zap.New(consoleCore),
		}, nil
	default:
		return LoggerOutputs{}, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}
}
