package classify

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandVariables expands the variables recognized in a configured path
// pattern: ${HOME}, ${CWD}, ${TMPDIR}. Patterns are expanded once at config
// load time so that later policy evaluation only ever compares resolved
// paths.
func ExpandVariables(pattern string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	replacer := strings.NewReplacer(
		"${HOME}", home,
		"${CWD}", cwd,
		"${TMPDIR}", os.TempDir(),
	)

	return filepath.Clean(replacer.Replace(pattern)), nil
}

// ExpandVariableList expands ExpandVariables over every entry in patterns.
func ExpandVariableList(patterns []string) ([]string, error) {
	result := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		expanded, err := ExpandVariables(pattern)
		if err != nil {
			return nil, err
		}

		result = append(result, expanded)
	}

	return result, nil
}
