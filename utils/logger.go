package utils

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"bplcommander/config"
)

var (
	baseLogger *logrus.Logger
	loggerOnce sync.Once
)

// Logger returns a component-tagged entry on the shared logrus logger. Output
// goes to stdout, and additionally to a rotating file when LOG_FILE is set.
func Logger(component string) *logrus.Entry {
	loggerOnce.Do(func() {
		baseLogger = logrus.New()
		baseLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

		if config.AppConfig.LogFile != "" {
			rotating := &lumberjack.Logger{
				Filename:   config.AppConfig.LogFile,
				MaxSize:    50, // MB
				MaxBackups: 5,
				MaxAge:     30, // days
				Compress:   true,
			}
			baseLogger.SetOutput(io.MultiWriter(os.Stdout, rotating))
		}

		if config.IsProduction() {
			baseLogger.SetLevel(logrus.InfoLevel)
		} else {
			baseLogger.SetLevel(logrus.DebugLevel)
		}
	})
	return baseLogger.WithField("component", component)
}
