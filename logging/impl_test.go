package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

type bufferSyncer struct {
	bytes.Buffer
}

func (b *bufferSyncer) Sync() error { return nil }

func TestLevelFiltering(t *testing.T) {
	buf := &bufferSyncer{}
	logger := NewBlankLogger("viewer")
	logger.AddAppender(NewWriterAppender(buf))
	logger.SetLevel(WARN)

	logger.Info("hidden")
	logger.Warnw("shown", "joint", "leg_1_coxa")
	out := buf.String()
	test.That(t, out, test.ShouldNotContainSubstring, "hidden")
	test.That(t, out, test.ShouldContainSubstring, "shown")
	test.That(t, out, test.ShouldContainSubstring, "leg_1_coxa")
	test.That(t, out, test.ShouldContainSubstring, "viewer")
}

func TestSublogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	sub := logger.Sublogger("assets").Sublogger("cache")
	test.That(t, sub.Name(), test.ShouldEqual, "assets.cache")

	sub.Infof("loaded %s", "coxa.stl")
	test.That(t, logs.FilterMessage("loaded coxa.stl").Len(), test.ShouldEqual, 1)
	test.That(t, logs.All()[0].LoggerName, test.ShouldEqual, "assets.cache")
}

func TestUnpairedKey(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Errorw("odd", "key")
	entries := logs.All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	test.That(t, entries[0].Level, test.ShouldEqual, zapcore.ErrorLevel)
	test.That(t, entries[0].ContextMap()["key"], test.ShouldNotBeNil)
}

func TestLevelFromString(t *testing.T) {
	for inp, expected := range map[string]Level{"debug": DEBUG, "INFO": INFO, "Warning": WARN, "error": ERROR} {
		level, err := LevelFromString(inp)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, expected)
	}
	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)

	var level Level
	test.That(t, level.UnmarshalJSON([]byte(`"warn"`)), test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, WARN)
	data, err := ERROR.MarshalJSON()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldEqual, `"error"`)
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hexviz.log")
	logger, err := NewLoggerFromConfig("file", Config{Level: "debug", File: path})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
	logger.Debug("to disk")

	data, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldContainSubstring, "to disk")

	_, err = NewLoggerFromConfig("file", Config{Level: "chatty"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, strings.Contains(err.Error(), "chatty"), test.ShouldBeTrue)
}
