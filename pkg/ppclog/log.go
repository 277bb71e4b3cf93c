// Package ppclog implements component C17: structured, leveled logging
// via logrus, one logger per component, with taskID/algorithmID carried
// as fields rather than baked into the message string.
package ppclog

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/wedpr-ppc/ppc-core/pkg/ppcwire"
)

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// SetLevel adjusts the base logger's level, e.g. for quieter test output.
func SetLevel(level logrus.Level) {
	base.SetLevel(level)
}

// For returns a component-scoped entry; component is a short, fixed name
// like "dispatcher" or "cm2020".
func For(component string) *logrus.Entry {
	return base.WithField("component", component)
}

// ForTask returns a component-scoped entry carrying taskID and
// algorithmID fields, the pair every protocol log line is keyed by.
func ForTask(component, taskID string, algo ppcwire.AlgorithmID) *logrus.Entry {
	return base.WithFields(logrus.Fields{
		"component":   component,
		"taskID":      taskID,
		"algorithmID": algo,
	})
}
