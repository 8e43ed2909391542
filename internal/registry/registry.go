// Package registry wraps Windows registry access by key/value path. All
// operations are pass-throughs to the platform registry API; on non-Windows
// builds every call reports an unsupported-OS error.
package registry

import (
	"fmt"
	"runtime"
	"strings"
)

// Root identifies a registry hive.
type Root string

const (
	RootClassesRoot   Root = "HKCR"
	RootCurrentUser   Root = "HKCU"
	RootLocalMachine  Root = "HKLM"
	RootUsers         Root = "HKU"
	RootCurrentConfig Root = "HKCC"
)

// longName maps a hive to its full name as used in .reg exports.
func (r Root) longName() string {
	switch r {
	case RootClassesRoot:
		return "HKEY_CLASSES_ROOT"
	case RootCurrentUser:
		return "HKEY_CURRENT_USER"
	case RootLocalMachine:
		return "HKEY_LOCAL_MACHINE"
	case RootUsers:
		return "HKEY_USERS"
	case RootCurrentConfig:
		return "HKEY_CURRENT_CONFIG"
	default:
		return string(r)
	}
}

// Value is one registry value: its name, data decoded into a Go type, and the
// registry type code.
type Value struct {
	Name string
	Data interface{}
	Type uint32
}

// Registry value type codes, matching the Windows REG_* constants.
const (
	TypeNone     uint32 = 0
	TypeSZ       uint32 = 1
	TypeExpandSZ uint32 = 2
	TypeBinary   uint32 = 3
	TypeDWord    uint32 = 4
	TypeMultiSZ  uint32 = 7
	TypeQWord    uint32 = 11
)

// TypeName returns the symbolic name for a registry type code.
func TypeName(code uint32) string {
	switch code {
	case TypeNone:
		return "REG_NONE"
	case TypeSZ:
		return "REG_SZ"
	case TypeExpandSZ:
		return "REG_EXPAND_SZ"
	case TypeBinary:
		return "REG_BINARY"
	case TypeDWord:
		return "REG_DWORD"
	case TypeMultiSZ:
		return "REG_MULTI_SZ"
	case TypeQWord:
		return "REG_QWORD"
	default:
		return fmt.Sprintf("REG_UNKNOWN(%d)", code)
	}
}

// IsWindows reports whether registry access is available on this platform.
func IsWindows() bool {
	return runtime.GOOS == "windows"
}

// formatExport renders key values in the .reg file format used by Export.
func formatExport(root Root, keyPath string, values []Value) string {
	var b strings.Builder
	b.WriteString("Windows Registry Editor Version 5.00\r\n\r\n")
	b.WriteString(fmt.Sprintf("[%s\\%s]\r\n", root.longName(), keyPath))

	for _, v := range values {
		switch v.Type {
		case TypeSZ, TypeExpandSZ:
			b.WriteString(fmt.Sprintf("%q=%q\r\n", v.Name, fmt.Sprintf("%v", v.Data)))
		case TypeDWord:
			if n, ok := v.Data.(uint64); ok {
				b.WriteString(fmt.Sprintf("%q=dword:%08x\r\n", v.Name, n))
			}
		case TypeQWord:
			if n, ok := v.Data.(uint64); ok {
				b.WriteString(fmt.Sprintf("%q=qword:%016x\r\n", v.Name, n))
			}
		case TypeBinary:
			if raw, ok := v.Data.([]byte); ok {
				parts := make([]string, len(raw))
				for i, octet := range raw {
					parts[i] = fmt.Sprintf("%02x", octet)
				}
				b.WriteString(fmt.Sprintf("%q=hex:%s\r\n", v.Name, strings.Join(parts, ",")))
			}
		}
	}

	return b.String()
}
