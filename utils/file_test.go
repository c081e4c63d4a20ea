package utils

import (
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestSafeJoinDir(t *testing.T) {
	parent := t.TempDir()

	joined, err := SafeJoinDir(parent, "meshes/coxa.stl")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, joined, test.ShouldEqual, filepath.Join(parent, "meshes", "coxa.stl"))

	_, err = SafeJoinDir(parent, "../outside.stl")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unsafe path join")
}

func TestResolveFile(t *testing.T) {
	p := ResolveFile("utils/file.go")
	test.That(t, filepath.Base(p), test.ShouldEqual, "file.go")
	test.That(t, filepath.Base(filepath.Dir(p)), test.ShouldEqual, "utils")
}
