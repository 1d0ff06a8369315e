//go:build !unix
// +build !unix

package platform

// Sync is a no-op where the host has no global sync call; callers still
// fsync the files they write.
func Sync() error {
	return nil
}
