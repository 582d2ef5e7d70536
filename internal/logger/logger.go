package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Log общий логгер консоли. Заполняется в Init.
var Log *logrus.Logger

// Init настраивает логгер под окружение:
// в development текст с полными временными метками и уровень debug,
// в остальных окружениях JSON и уровень info.
func Init(env string) {
	Log = logrus.New()

	if env == "development" {
		Log.SetLevel(logrus.DebugLevel)
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return
	}

	Log.SetLevel(logrus.InfoLevel)
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// Entry возвращает запись логгера для компонента.
// До вызова Init пишет в io.Discard, чтобы пакеты можно было использовать в тестах.
func Entry(component string) *logrus.Entry {
	if Log == nil {
		silent := logrus.New()
		silent.SetOutput(io.Discard)
		return logrus.NewEntry(silent).WithField("component", component)
	}
	return Log.WithField("component", component)
}
