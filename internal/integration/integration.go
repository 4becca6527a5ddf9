// Package integration provides the embedded git hook snippet.
package integration

import (
	"bytes"
	_ "embed"
	"os/exec"
	"path/filepath"
	"text/template"
)

// PreCommit contains the git pre-commit hook template.
//
//go:embed pre-commit.sh
var PreCommit string

// Render renders the pre-commit hook with the local sh path and the given
// crlfstat binary name.
func Render(binary string) (string, error) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		return "", err
	}

	sh = filepath.ToSlash(sh)

	tmpl, err := template.New("pre-commit").Parse(PreCommit)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{
		"SH":     sh,
		"Binary": binary,
	}); err != nil {
		return "", err
	}

	return buf.String(), nil
}
