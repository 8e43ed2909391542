package validation

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	sysErrors "github.com/milkywaygod2/sysutil/internal/errors"
)

func TestValidateArgument(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		wantErr bool
	}{
		{"plain flag", "--onefile", false},
		{"path argument", "dist/app.py", false},
		{"version pin", "requests==2.31.0", false},
		{"semicolon injection", "foo; rm -rf /", true},
		{"pipe injection", "foo | cat", true},
		{"subshell", "$(whoami)", true},
		{"backtick", "`id`", true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArgument(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, sysErrors.IsType(err, sysErrors.ErrorTypeValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCommand(t *testing.T) {
	allowed := map[string]bool{"python": true, "pip": true}

	assert.NoError(t, ValidateCommand("python", allowed))
	assert.NoError(t, ValidateCommand("/usr/bin/python", allowed))
	assert.Error(t, ValidateCommand("curl", allowed))
	assert.Error(t, ValidateCommand("", allowed))

	// Empty allowlist permits anything syntactically valid.
	assert.NoError(t, ValidateCommand("anything", nil))
	assert.Error(t, ValidateCommand("bad;cmd", nil))
}

func TestValidatePath(t *testing.T) {
	assert.NoError(t, ValidatePath("dist/app"))
	assert.NoError(t, ValidatePath("/tmp/work/file.txt"))
	assert.Error(t, ValidatePath(""))
	assert.Error(t, ValidatePath("../../etc/passwd"))
	assert.Error(t, ValidatePath("foo\x00bar"))
}

func TestValidatePathWithin(t *testing.T) {
	assert.NoError(t, ValidatePathWithin("/tmp/extract", "sub/file.txt"))
	assert.Error(t, ValidatePathWithin("/tmp/extract", "../outside.txt"))
	assert.Error(t, ValidatePathWithin("/tmp/extract", "../../etc/passwd"))
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("https://example.com/file.zip"))
	assert.NoError(t, ValidateURL("http://localhost:8080/api"))
	assert.Error(t, ValidateURL("ftp://example.com/file"))
	assert.Error(t, ValidateURL("file:///etc/passwd"))
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeInput("hello\x00 world"))
	assert.Equal(t, "tab\tand\nnewline", SanitizeInput("tab\tand\nnewline"))
	assert.Equal(t, "bell", SanitizeInput("be\x07ll"))
}

func TestSanitizeInputProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("sanitization is idempotent", prop.ForAll(
		func(s string) bool {
			once := SanitizeInput(s)
			return SanitizeInput(once) == once
		},
		gen.AnyString(),
	))

	properties.Property("sanitized output never contains null bytes", prop.ForAll(
		func(s string) bool {
			for _, r := range SanitizeInput(s) {
				if r == 0 {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
