package viewer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.viam.com/test"
	"go.viam.com/utils/testutils"
)

func TestWatchDescription(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "robot.urdf")
	test.That(t, os.WriteFile(path, armDoc("first"), 0o600), test.ShouldBeNil)

	s := newTestSession(t, Options{WatchDebounce: 10 * time.Millisecond})
	test.That(t, s.LoadDescriptionFile(context.Background(), path), test.ShouldBeNil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	test.That(t, s.WatchDescription(ctx, path), test.ShouldBeNil)

	// unrelated files in the same directory are ignored
	test.That(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600), test.ShouldBeNil)
	test.That(t, os.WriteFile(path, armDoc("second"), 0o600), test.ShouldBeNil)

	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		desc, err := s.Description()
		test.That(tb, err, test.ShouldBeNil)
		test.That(tb, desc.Name, test.ShouldEqual, "second")
	})

	// a broken save keeps the last good model
	test.That(t, os.WriteFile(path, []byte("<robot"), 0o600), test.ShouldBeNil)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, s.Status().Current, test.ShouldNotBeNil)
		test.That(tb, s.Status().Current.Kind, test.ShouldEqual, StatusError)
	})
	desc, err := s.Description()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, desc.Name, test.ShouldEqual, "second")
}

func TestWatchDescriptionMissingDir(t *testing.T) {
	s := newTestSession(t, Options{})
	err := s.WatchDescription(context.Background(), filepath.Join(t.TempDir(), "gone", "robot.urdf"))
	test.That(t, err, test.ShouldNotBeNil)
}
