package classify

import (
	"regexp"
	"strings"
)

// GlobToRegex converts a gitignore-style glob pattern into an anchored regular
// expression. Used for matching blocked/allowed filesystem path patterns.
//
// Supported patterns:
//   - * matches any characters except / (e.g., *.ts matches foo.ts but not foo/bar.ts)
//   - ** matches any characters including / (e.g., src/**/*.ts matches all .ts files in src/)
//   - ? matches any single character except / (e.g., file?.txt matches file1.txt)
//   - [abc] matches any character in the set (e.g., file[0-9].txt matches file3.txt)
func GlobToRegex(globPattern string) string {
	result := globPattern

	result = escapeRegexChars(result)
	result = escapeUnclosedBrackets(result)

	// Order matters - ** before *, use placeholders to avoid double-conversion.
	result = strings.ReplaceAll(result, "**/", "__GLOBSTAR_SLASH__")
	result = strings.ReplaceAll(result, "**", "__GLOBSTAR__")
	result = strings.ReplaceAll(result, "*", "[^/]*")
	result = strings.ReplaceAll(result, "?", "[^/]")
	result = strings.ReplaceAll(result, "__GLOBSTAR_SLASH__", "(.*/)?")
	result = strings.ReplaceAll(result, "__GLOBSTAR__", ".*")

	return "^" + result + "$"
}

// escapeRegexChars escapes regex special characters except glob wildcards.
func escapeRegexChars(s string) string {
	specialChars := []string{".", "^", "$", "+", "{", "}", "(", ")", "|"}

	result := s
	for _, char := range specialChars {
		result = strings.ReplaceAll(result, char, "\\"+char)
	}

	return result
}

var escapeUnclosedBracketsRegex = regexp.MustCompile(`\[([^\]]*?)$`)

// escapeUnclosedBrackets escapes bracket expressions with no closing bracket,
// e.g. "[abc" -> "\[abc", so they are treated literally instead of erroring.
func escapeUnclosedBrackets(s string) string {
	return escapeUnclosedBracketsRegex.ReplaceAllString(s, `\[$1`)
}

// ContainsGlob returns true if the pattern contains glob wildcards.
func ContainsGlob(pattern string) bool {
	return strings.Contains(pattern, "*") ||
		strings.Contains(pattern, "?") ||
		strings.Contains(pattern, "[")
}
