package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

// appFieldHook tags every entry with the binary's name so server and CLI
// output can share a sink.
type appFieldHook string

func (appFieldHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h appFieldHook) Fire(entry *logrus.Entry) error {
	if _, set := entry.Data["app"]; !set {
		entry.Data["app"] = string(h)
	}
	return nil
}

// InitLogger reads LOG_LEVEL (default info) and LOG_FORMAT ("json" or text).
func InitLogger(appName string) {
	Logger.SetOutput(os.Stdout)

	levelName := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		if levelName != "" {
			Logger.Warnf("Unknown LOG_LEVEL %q, using info", levelName)
		}
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	Logger.AddHook(appFieldHook(appName))
}
