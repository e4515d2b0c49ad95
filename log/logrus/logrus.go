package logrus

import (
	"github.com/sirupsen/logrus"

	sclog "github.com/unkn0wn-root/scrycache/log"
)

// Logger adapts a logrus entry to the scrycache logging surface.
type Logger struct{ E *logrus.Entry }

var _ sclog.Logger = Logger{}

func (l Logger) Debug(msg string, f sclog.Fields) { l.E.WithFields(logrus.Fields(f)).Debug(msg) }
func (l Logger) Info(msg string, f sclog.Fields)  { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l Logger) Warn(msg string, f sclog.Fields)  { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l Logger) Error(msg string, f sclog.Fields) { l.E.WithFields(logrus.Fields(f)).Error(msg) }
