package testutil

import (
	"io"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func init() {
	logrus.SetLevel(logrus.TraceLevel)

	if !isVerboseTestRun(os.Args) {
		logrus.StandardLogger().SetOutput(io.Discard)
	}
}

func isVerboseTestRun(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-test.v", "-test.v=true", "-test.v=test2json":
			return true
		}
	}
	return false
}

// CaptureLogs records every entry written to the standard logger for the
// remainder of the test.
func CaptureLogs(t *testing.T) *logtest.Hook {
	logger := logrus.StandardLogger()

	hook := new(logtest.Hook)
	previous := logger.ReplaceHooks(make(logrus.LevelHooks))
	logger.AddHook(hook)
	t.Cleanup(func() {
		logger.ReplaceHooks(previous)
	})

	return hook
}
