package classify

import "regexp"

// credentialPatterns match common secret/credential shapes inside an
// outbound request body. These back the exfiltration detector's
// independent payload scan (spec.md §4.4: "payload scanning for credential
// patterns, run independently of the correlation window").
var credentialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),                                  // AWS access key ID
	regexp.MustCompile(`-----BEGIN (RSA |EC |OPENSSH |DSA )?PRIVATE KEY-----`), // PEM private key
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`), // JWT
	regexp.MustCompile(`(?i)(postgres|postgresql|mysql|mongodb(\+srv)?)://[^\s'"]+:[^\s'"]+@`), // DB URI with credentials
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9]{36,}`),                        // GitHub token
	regexp.MustCompile(`xox[baprs]-[A-Za-z0-9-]{10,}`),                      // Slack token
	regexp.MustCompile(`(?i)(api[_-]?key|secret|token|password)["']?\s*[:=]\s*["'][A-Za-z0-9_\-./+=]{12,}["']`), // generic assignment
}

// PayloadMatchesCredentialPattern reports whether body contains a
// recognizable credential shape, and if so, a short label identifying which
// pattern matched (for the audit record's reason field).
func PayloadMatchesCredentialPattern(body []byte) (bool, string) {
	labels := []string{
		"aws-access-key-id",
		"pem-private-key",
		"jwt",
		"db-connection-uri",
		"github-token",
		"slack-token",
		"generic-secret-assignment",
	}

	for i, re := range credentialPatterns {
		if re.Match(body) {
			return true, labels[i]
		}
	}

	return false, ""
}

// envVarNamePatterns are glob-style patterns of environment variable names
// always classified as sensitive for the environment resolution order
// (spec.md §4.1 environment resolution order, step 1), regardless of user
// config.
var envVarNamePatterns = []string{
	"*_KEY",
	"*_SECRET",
	"*_TOKEN",
	"*_PASSWORD",
	"*_CREDENTIALS",
	"AWS_*",
	"GITHUB_TOKEN",
	"NPM_TOKEN",
	"GH_TOKEN",
}

// IsSensitiveEnvVarName reports whether name matches one of the built-in
// sensitive environment-variable name patterns.
func IsSensitiveEnvVarName(name string) bool {
	for _, pattern := range envVarNamePatterns {
		re, err := regexp.Compile(GlobToRegex(pattern))
		if err == nil && re.MatchString(name) {
			return true
		}
	}

	return false
}
