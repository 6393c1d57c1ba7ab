package util

import (
	"github.com/sirupsen/logrus"
)

// Debug is the highest DPrintf level that gets logged.
var Debug uint64 = 0

var Log = logrus.StandardLogger()

// DPrintf logs a trace message when level <= Debug. Level 0 messages go out
// at info, everything else at debug.
func DPrintf(level uint64, format string, a ...interface{}) {
	if level <= Debug {
		if level == 0 {
			Log.Infof(format, a...)
		} else {
			Log.WithField("level", level).Debugf(format, a...)
		}
	}
}

// SetDebug sets the DPrintf threshold and makes sure logrus lets the
// resulting debug messages through.
func SetDebug(level uint64) {
	Debug = level
	if level > 0 && !Log.IsLevelEnabled(logrus.DebugLevel) {
		Log.SetLevel(logrus.DebugLevel)
	}
}

func RoundUp(n uint64, sz uint64) uint64 {
	return (n + sz - 1) / sz
}

func Min(n uint64, m uint64) uint64 {
	if n < m {
		return n
	} else {
		return m
	}
}

func Max(n uint64, m uint64) uint64 {
	if n > m {
		return n
	}
	return m
}

// SumOverflows reports whether a + b wraps around.
func SumOverflows(a uint64, b uint64) bool {
	return a+b < a
}

func CloneByteSlice(s []byte) []byte {
	s2 := make([]byte, len(s))
	copy(s2, s)
	return s2
}
