package utils

import (
	"testing"

	"go.viam.com/test"
)

func TestGuard(t *testing.T) {
	cleaned := 0
	build := func(fail bool) {
		guard := NewGuard(func() { cleaned++ })
		defer guard.OnFail()
		if fail {
			return
		}
		guard.Success()
	}

	build(false)
	test.That(t, cleaned, test.ShouldEqual, 0)
	build(true)
	test.That(t, cleaned, test.ShouldEqual, 1)
}
