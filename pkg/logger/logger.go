package logger

import (
	"io"
	"log"
	"os"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARNING
	ERROR
)

// Logger is a thin leveled wrapper over the standard library log package.
type Logger struct {
	infoLogger    *log.Logger
	warningLogger *log.Logger
	errorLogger   *log.Logger
	debugLogger   *log.Logger
	minLevel      Level
}

func New(output io.Writer, minLevel Level) *Logger {
	flags := log.Ldate | log.Ltime | log.Lmicroseconds

	return &Logger{
		infoLogger:    log.New(output, "INFO:    ", flags),
		warningLogger: log.New(output, "WARNING: ", flags),
		errorLogger:   log.New(os.Stderr, "ERROR:   ", flags),
		debugLogger:   log.New(output, "DEBUG:   ", flags),
		minLevel:      minLevel,
	}
}

// Default returns a stdout logger at INFO level.
func Default() *Logger {
	return New(os.Stdout, INFO)
}

func (l *Logger) Info(msg string) {
	if l.minLevel <= INFO {
		l.infoLogger.Println(msg)
	}
}

func (l *Logger) Infof(format string, v ...interface{}) {
	if l.minLevel <= INFO {
		l.infoLogger.Printf(format, v...)
	}
}

func (l *Logger) Warning(msg string) {
	if l.minLevel <= WARNING {
		l.warningLogger.Println(msg)
	}
}

func (l *Logger) Warningf(format string, v ...interface{}) {
	if l.minLevel <= WARNING {
		l.warningLogger.Printf(format, v...)
	}
}

func (l *Logger) Error(msg string) {
	if l.minLevel <= ERROR {
		l.errorLogger.Println(msg)
	}
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	if l.minLevel <= ERROR {
		l.errorLogger.Printf(format, v...)
	}
}

func (l *Logger) Debug(msg string) {
	if l.minLevel <= DEBUG {
		l.debugLogger.Println(msg)
	}
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.minLevel <= DEBUG {
		l.debugLogger.Printf(format, v...)
	}
}

var defaultLogger = Default()

// Package-level helpers writing through the global logger.

func Info(msg string)                          { defaultLogger.Info(msg) }
func Infof(format string, v ...interface{})    { defaultLogger.Infof(format, v...) }
func Warning(msg string)                       { defaultLogger.Warning(msg) }
func Warningf(format string, v ...interface{}) { defaultLogger.Warningf(format, v...) }
func Error(msg string)                         { defaultLogger.Error(msg) }
func Errorf(format string, v ...interface{})   { defaultLogger.Errorf(format, v...) }
func Debug(msg string)                         { defaultLogger.Debug(msg) }
func Debugf(format string, v ...interface{})   { defaultLogger.Debugf(format, v...) }

// SetLevel changes the minimum level of the global logger.
func SetLevel(level Level) {
	defaultLogger.minLevel = level
}
