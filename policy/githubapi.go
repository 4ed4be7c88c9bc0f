package policy

import (
	"encoding/base64"
	"encoding/json"
	"regexp"
	"strings"
)

var repoCreationPath = regexp.MustCompile(`^/(user/repos|orgs/[^/]+/repos)$`)
var workflowPath = regexp.MustCompile(`\.github/workflows/`)

type repoCreationBody struct {
	Name string `json:"name"`
}

type contentsBody struct {
	Content string `json:"content"`
	Path    string `json:"path"`
}

var selfHostedRunsOn = regexp.MustCompile(`(?i)runs-on:\s*self-hosted`)
var secretsExfilPattern = regexp.MustCompile(`(?i)(curl|wget|echo|env)[^\n]*\$\{\{\s*secrets\.[^\n]*\}\}`)

// CheckGitHubAPI implements the GitHub-API monitor lobe (spec.md §4.7).
// Called by the network interceptor after the request body has been fully
// collected, for any request whose host is the GitHub API or raw-content
// domain.
func (e *Engine) CheckGitHubAPI(op Operation) Verdict {
	path := urlPath(op.Target)

	if e.cfg.GitHubAPI.MonitorRepoCreation && op.Method == "POST" && repoCreationPath.MatchString(path) {
		var body repoCreationBody
		if err := json.Unmarshal(op.Body, &body); err == nil {
			for _, blocked := range e.cfg.GitHubAPI.BlockedRepoNames {
				if strings.Contains(strings.ToLower(body.Name), strings.ToLower(blocked)) {
					return Deny(ReasonRepoCreation, SeverityCritical).WithPattern(blocked)
				}
			}
		}
	}

	if e.cfg.GitHubAPI.MonitorWorkflowCreation && (op.Method == "PUT" || op.Method == "POST") && workflowPath.MatchString(path) {
		for _, pattern := range e.cfg.GitHubAPI.BlockedWorkflowPatterns {
			re, err := regexp.Compile(pattern)
			if err == nil && re.MatchString(path) {
				return Deny(ReasonWorkflowCreation, SeverityCritical).WithPattern(pattern)
			}
		}

		if content, ok := decodeWorkflowContent(op.Body); ok {
			if selfHostedRunsOn.MatchString(content) {
				return Deny(ReasonWorkflowCreation, SeverityCritical).WithPattern("runs-on: self-hosted")
			}

			if secretsExfilPattern.MatchString(content) {
				return Deny(ReasonWorkflowCreation, SeverityCritical).WithPattern("secrets exfiltration")
			}
		}
	}

	return Allow(ReasonAllowDefault)
}

func decodeWorkflowContent(body []byte) (string, bool) {
	var payload contentsBody
	if err := json.Unmarshal(body, &payload); err != nil || payload.Content == "" {
		return string(body), len(body) > 0
	}

	decoded, err := base64.StdEncoding.DecodeString(payload.Content)
	if err != nil {
		return payload.Content, true
	}

	return string(decoded), true
}

func urlPath(target string) string {
	idx := strings.Index(target, "://")
	rest := target
	if idx != -1 {
		rest = target[idx+3:]
	}

	slash := strings.Index(rest, "/")
	if slash == -1 {
		return "/"
	}

	return rest[slash:]
}
