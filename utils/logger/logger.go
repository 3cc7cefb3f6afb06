// Package logger formats messages as |object|message and hands them to logrus.
package logger

import (
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"
)

type stringer interface {
	String() string
}

const objWidth = 20

func objToString(obj any) (objStr string) {
	if obj == nil {
		objStr = "NIL"
	} else if stringerObj, ok := obj.(stringer); ok {
		objStr = stringerObj.String()
	} else if objStr, ok = obj.(string); ok {
	} else {
		t := reflect.TypeOf(obj)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		objStr = t.Name()
	}
	if len(objStr) > objWidth {
		objStr = objStr[:objWidth]
	}
	return
}

func format(object any, message string) string {
	return fmt.Sprintf("|%20s|%s", objToString(object), message)
}

func Init(lvl logrus.Level) {
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		PadLevelText:    true,
		TimestampFormat: "2006/02/01 15:04:05",
	})
}

// ParseLevel accepts the logrus level names ("debug", "info", ...).
func ParseLevel(name string) (logrus.Level, error) {
	return logrus.ParseLevel(name)
}

func log(lvl logrus.Level, object any, message string) {
	if !logrus.IsLevelEnabled(lvl) {
		return
	}
	logrus.StandardLogger().Log(lvl, format(object, message))
}

func logf(lvl logrus.Level, object any, message string, args ...any) {
	if !logrus.IsLevelEnabled(lvl) {
		return
	}
	logrus.StandardLogger().Log(lvl, format(object, fmt.Sprintf(message, args...)))
}

func Trace(object any, message string) {
	log(logrus.TraceLevel, object, message)
}

func Tracef(object any, message string, args ...any) {
	logf(logrus.TraceLevel, object, message, args...)
}

func Debug(object any, message string) {
	log(logrus.DebugLevel, object, message)
}

func Debugf(object any, message string, args ...any) {
	logf(logrus.DebugLevel, object, message, args...)
}

func Info(object any, message string) {
	log(logrus.InfoLevel, object, message)
}

func Infof(object any, message string, args ...any) {
	logf(logrus.InfoLevel, object, message, args...)
}

func Warning(object any, message string) {
	log(logrus.WarnLevel, object, message)
}

func Warningf(object any, message string, args ...any) {
	logf(logrus.WarnLevel, object, message, args...)
}

func Error(object any, message string) {
	log(logrus.ErrorLevel, object, message)
}

func Errorf(object any, message string, args ...any) {
	logf(logrus.ErrorLevel, object, message, args...)
}

func Fatal(object any, message string) {
	logrus.Fatal(format(object, message))
}

func Fatalf(object any, message string, args ...any) {
	logrus.Fatal(format(object, fmt.Sprintf(message, args...)))
}
