//go:build !windows

package registry

import "github.com/milkywaygod2/sysutil/internal/errors"

// GetValue reads one value from a key.
func GetValue(root Root, keyPath, name string) (Value, error) {
	return Value{}, errors.ErrUnsupportedOS("registry read")
}

// SetValue writes one value under a key.
func SetValue(root Root, keyPath, name string, data interface{}) error {
	return errors.ErrUnsupportedOS("registry write")
}

// DeleteValue removes one value from a key.
func DeleteValue(root Root, keyPath, name string) error {
	return errors.ErrUnsupportedOS("registry write")
}

// CreateKey creates a key, including intermediate keys.
func CreateKey(root Root, keyPath string) error {
	return errors.ErrUnsupportedOS("registry write")
}

// DeleteKey removes a key.
func DeleteKey(root Root, keyPath string) error {
	return errors.ErrUnsupportedOS("registry write")
}

// KeyExists reports whether a key can be opened for reading.
func KeyExists(root Root, keyPath string) bool {
	return false
}

// Subkeys lists the names of a key's immediate subkeys.
func Subkeys(root Root, keyPath string) ([]string, error) {
	return nil, errors.ErrUnsupportedOS("registry read")
}

// Values lists every value stored directly under a key.
func Values(root Root, keyPath string) ([]Value, error) {
	return nil, errors.ErrUnsupportedOS("registry read")
}

// Export writes a key and its values to a .reg file.
func Export(root Root, keyPath, outputFile string) error {
	return errors.ErrUnsupportedOS("registry export")
}
