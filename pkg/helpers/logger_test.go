package helpers

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func captureLogger() (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger, &buf
}

func TestLogError(t *testing.T) {
	logger, buf := captureLogger()

	LogError(logger, "store failed", errors.New("connection refused"), logrus.Fields{"email": "a@x.com"})

	out := buf.String()
	if !strings.Contains(out, "store failed") || !strings.Contains(out, "connection refused") || !strings.Contains(out, "a@x.com") {
		t.Fatalf("missing fields in log output: %q", out)
	}

	// nil fields and nil error must not panic
	buf.Reset()
	LogError(logger, "plain failure", nil, nil)
	if !strings.Contains(buf.String(), "plain failure") {
		t.Fatalf("missing message in log output: %q", buf.String())
	}
}

func TestLogInfo(t *testing.T) {
	logger, buf := captureLogger()

	LogInfo(logger, "server starting", logrus.Fields{"port": "8080"})
	out := buf.String()
	if !strings.Contains(out, "server starting") || !strings.Contains(out, "8080") {
		t.Fatalf("missing fields in log output: %q", out)
	}

	buf.Reset()
	LogInfo(logger, "no fields", nil)
	if !strings.Contains(buf.String(), "no fields") {
		t.Fatalf("missing message in log output: %q", buf.String())
	}
}
