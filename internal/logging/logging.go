// Package logging builds the process logger. Logs are JSON lines on stderr so
// that stdout stays free for the SQL printed by plan and dry runs.
//
// PRETTY=1 switches to the console writer and DEBUG=1 lowers the level to
// debug.
package logging

import (
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		function := ""
		fun := runtime.FuncForPC(pc)
		if fun != nil {
			funName := fun.Name()
			slash := strings.LastIndex(funName, "/")
			if slash > 0 {
				funName = funName[slash+1:]
			}
			function = " " + funName + "()"
		}
		return file + ":" + strconv.Itoa(line) + function
	}
}

// NewLogger returns a logger writing to stderr, configured from PRETTY and
// DEBUG, and installs it as zerolog's default context logger.
func NewLogger() zerolog.Logger {
	l := New(os.Stderr, os.Getenv("PRETTY") == "1", os.Getenv("DEBUG") == "1")
	zerolog.DefaultContextLogger = &l
	return l
}

// New returns a logger writing to w.
func New(w io.Writer, pretty, debug bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "time"

	if pretty {
		w = zerolog.ConsoleWriter{Out: w}
	}
	logger := zerolog.New(w).With().Timestamp().Logger()
	logger = logger.Hook(CallerHook{})

	if debug {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}
	return logger
}

// CallerHook adds the caller of the log call to every event.
type CallerHook struct{}

func (h CallerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Caller(3)
}
