package bptree

import "github.com/sirupsen/logrus"

// log is the package-wide logger. It defaults to logging nothing below
// warnings so the debug-level calls sprinkled through insert/split/delete/
// merge and page allocation (replacing the original source's TRACE_SPLIT/
// TRACE_MERGE/TRACE_INSERT_CELL/TRACE_DELETE_CELL macros) cost little on the
// hot path: logrus checks the level before it ever formats the message,
// though the field maps passed to WithFields are still built.
var log = logrus.New()

func init() {
	log.SetLevel(logrus.WarnLevel)
}

// SetLogger replaces the package logger, e.g. to raise the level to Debug or
// Trace for diagnosing a split/merge cascade, or to redirect output.
func SetLogger(l *logrus.Logger) {
	if l != nil {
		log = l
	}
}
