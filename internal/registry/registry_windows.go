//go:build windows

package registry

import (
	"os"

	winreg "golang.org/x/sys/windows/registry"

	"github.com/milkywaygod2/sysutil/internal/errors"
)

func rootKey(root Root) winreg.Key {
	switch root {
	case RootClassesRoot:
		return winreg.CLASSES_ROOT
	case RootLocalMachine:
		return winreg.LOCAL_MACHINE
	case RootUsers:
		return winreg.USERS
	case RootCurrentConfig:
		return winreg.CURRENT_CONFIG
	default:
		return winreg.CURRENT_USER
	}
}

func accessErr(op, keyPath string, err error) error {
	return errors.NewRegistryError(errors.ErrCodeRegistryAccess, op+" failed", err).WithPath(keyPath)
}

// GetValue reads one value from a key, decoding it by its registry type.
func GetValue(root Root, keyPath, name string) (Value, error) {
	k, err := winreg.OpenKey(rootKey(root), keyPath, winreg.QUERY_VALUE)
	if err != nil {
		return Value{}, accessErr("open key", keyPath, err)
	}
	defer k.Close()

	return readValue(k, keyPath, name)
}

func readValue(k winreg.Key, keyPath, name string) (Value, error) {
	_, valType, err := k.GetValue(name, nil)
	if err != nil {
		return Value{}, accessErr("query value", keyPath, err)
	}

	value := Value{Name: name, Type: valType}
	switch valType {
	case winreg.SZ, winreg.EXPAND_SZ:
		s, _, err := k.GetStringValue(name)
		if err != nil {
			return Value{}, accessErr("read string value", keyPath, err)
		}
		value.Data = s
	case winreg.DWORD, winreg.QWORD:
		n, _, err := k.GetIntegerValue(name)
		if err != nil {
			return Value{}, accessErr("read integer value", keyPath, err)
		}
		value.Data = n
	case winreg.MULTI_SZ:
		ss, _, err := k.GetStringsValue(name)
		if err != nil {
			return Value{}, accessErr("read strings value", keyPath, err)
		}
		value.Data = ss
	default:
		raw, _, err := k.GetBinaryValue(name)
		if err != nil {
			return Value{}, accessErr("read binary value", keyPath, err)
		}
		value.Data = raw
	}

	return value, nil
}

// SetValue writes one value under a key, creating the key when absent. The
// registry type is derived from the Go type of data: string, []string,
// integers, or []byte.
func SetValue(root Root, keyPath, name string, data interface{}) error {
	k, _, err := winreg.CreateKey(rootKey(root), keyPath, winreg.SET_VALUE)
	if err != nil {
		return accessErr("create key", keyPath, err)
	}
	defer k.Close()

	switch v := data.(type) {
	case string:
		err = k.SetStringValue(name, v)
	case []string:
		err = k.SetStringsValue(name, v)
	case []byte:
		err = k.SetBinaryValue(name, v)
	case uint32:
		err = k.SetDWordValue(name, v)
	case int:
		err = k.SetQWordValue(name, uint64(v))
	case uint64:
		err = k.SetQWordValue(name, v)
	default:
		return errors.NewValidationError(errors.ErrCodeInvalidArgument,
			"unsupported registry value type")
	}

	if err != nil {
		return accessErr("set value", keyPath, err)
	}
	return nil
}

// DeleteValue removes one value from a key.
func DeleteValue(root Root, keyPath, name string) error {
	k, err := winreg.OpenKey(rootKey(root), keyPath, winreg.SET_VALUE)
	if err != nil {
		return accessErr("open key", keyPath, err)
	}
	defer k.Close()

	if err := k.DeleteValue(name); err != nil {
		return accessErr("delete value", keyPath, err)
	}
	return nil
}

// CreateKey creates a key, including intermediate keys.
func CreateKey(root Root, keyPath string) error {
	k, _, err := winreg.CreateKey(rootKey(root), keyPath, winreg.ALL_ACCESS)
	if err != nil {
		return accessErr("create key", keyPath, err)
	}
	return k.Close()
}

// DeleteKey removes a key. The key must have no subkeys.
func DeleteKey(root Root, keyPath string) error {
	if err := winreg.DeleteKey(rootKey(root), keyPath); err != nil {
		return accessErr("delete key", keyPath, err)
	}
	return nil
}

// KeyExists reports whether a key can be opened for reading.
func KeyExists(root Root, keyPath string) bool {
	k, err := winreg.OpenKey(rootKey(root), keyPath, winreg.QUERY_VALUE)
	if err != nil {
		return false
	}
	k.Close()
	return true
}

// Subkeys lists the names of a key's immediate subkeys.
func Subkeys(root Root, keyPath string) ([]string, error) {
	k, err := winreg.OpenKey(rootKey(root), keyPath, winreg.ENUMERATE_SUB_KEYS)
	if err != nil {
		return nil, accessErr("open key", keyPath, err)
	}
	defer k.Close()

	names, err := k.ReadSubKeyNames(-1)
	if err != nil {
		return nil, accessErr("enumerate subkeys", keyPath, err)
	}
	return names, nil
}

// Values lists every value stored directly under a key.
func Values(root Root, keyPath string) ([]Value, error) {
	k, err := winreg.OpenKey(rootKey(root), keyPath, winreg.QUERY_VALUE)
	if err != nil {
		return nil, accessErr("open key", keyPath, err)
	}
	defer k.Close()

	names, err := k.ReadValueNames(-1)
	if err != nil {
		return nil, accessErr("enumerate values", keyPath, err)
	}

	values := make([]Value, 0, len(names))
	for _, name := range names {
		v, err := readValue(k, keyPath, name)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// Export writes a key and its values to a .reg file.
func Export(root Root, keyPath, outputFile string) error {
	values, err := Values(root, keyPath)
	if err != nil {
		return err
	}

	content := formatExport(root, keyPath, values)
	if err := os.WriteFile(outputFile, []byte(content), 0644); err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath, "failed to write export", err).WithPath(outputFile)
	}
	return nil
}
