package utils

// Guard runs cleanup for a partially built resource unless the function building it
// declares success. Usage:
//
//	guard := NewGuard(func() { f.Close() })
//	defer guard.OnFail()
//	if err != nil { return err }
//	guard.Success()
//	return nil
type Guard struct {
	OnFail  func()
	success bool
}

// NewGuard returns a Guard that runs onFailCleanup from OnFail until Success is called.
func NewGuard(onFailCleanup func()) *Guard {
	ret := &Guard{}
	ret.OnFail = func() {
		if !ret.success {
			onFailCleanup()
		}
	}
	return ret
}

// Success declares the function succeeded and the "failure" cleanup code does not need to be
// executed.
func (guard *Guard) Success() {
	guard.success = true
}
