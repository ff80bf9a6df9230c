//go:build amd64

package utils

// SetProcTitle is a no-op on amd64, where gspt's cgo shim is not
// available in our build environment.
func SetProcTitle(title string) {}
