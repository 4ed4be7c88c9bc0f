package policy

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/safedep/depwatch/config"
)

// shellMetacharacters are the characters spec.md §4.1/§8 single out as
// command-injection vectors.
const shellMetacharacters = ";|&`$(){}[]<>"

var backtickOrSubshell = regexp.MustCompile("`[^`]*`|\\$\\([^)]*\\)")

// checkCommand implements the command resolution order (spec.md §4.1).
func (e *Engine) checkCommand(op Operation, counters CounterSnapshot) Verdict {
	// Step 1: shell-metacharacter detection on the full command string.
	if containsShellMetacharacter(op.Target) {
		return Deny(ReasonShellMetacharactersDetected, SeverityCritical).WithPattern(metacharacterPattern(op.Target))
	}

	// Step 3: behavioral hard-limit.
	if e.cfg.Behavioral.MaxSpawns > 0 && counters.ProcessSpawns >= e.cfg.Behavioral.MaxSpawns {
		return Deny(ReasonHardLimitExceeded, SeverityCritical).
			WithLimit(e.cfg.Behavioral.MaxSpawns, counters.ProcessSpawns+1)
	}

	// Step 4: exception allow-list for this exact command.
	if config.ExceptionAllowsCommand(e.cfg.Exceptions, op.Origin.Name, op.Target) {
		return Allow(ReasonAllowException).WithException(op.Origin.Name)
	}

	// Step 5: blocked command patterns.
	for _, blocked := range e.cfg.Commands.BlockedPatterns {
		re, err := regexp.Compile(blocked.Regex)
		if err != nil {
			continue
		}

		if re.MatchString(op.Target) {
			return Deny(ReasonBlockedCommand, Severity(blocked.Severity)).WithPattern(blocked.Regex)
		}
	}

	// Step 6: allowed-commands whitelist.
	if len(e.cfg.Commands.AllowedCommands) > 0 {
		program, argTail := splitCommand(op.Target)
		programName := filepath.Base(program)

		allowed := false
		for _, p := range e.cfg.Commands.AllowedCommands {
			if p == programName || p == program {
				allowed = true
				break
			}
		}

		if !allowed {
			return Deny(ReasonNotInAllowedCommands, SeverityMedium)
		}

		if containsShellMetacharacter(argTail) {
			return Deny(ReasonWhitelistedCommandWithShellInjection, SeverityHigh).WithPattern(metacharacterPattern(argTail))
		}
	}

	// Step 7: allow.
	return Allow(ReasonAllowDefault)
}

func containsShellMetacharacter(command string) bool {
	if backtickOrSubshell.MatchString(command) {
		return true
	}

	return strings.ContainsAny(command, shellMetacharacters)
}

// metacharacterPattern names which chaining/substitution pattern fired, for
// the audit record and the console banner (spec.md §8 scenario 2).
func metacharacterPattern(command string) string {
	switch {
	case strings.Contains(command, ";"):
		return "semicolon chaining"
	case strings.Contains(command, "&&"):
		return "and chaining"
	case strings.Contains(command, "||"):
		return "or chaining"
	case strings.Contains(command, "|"):
		return "pipe chaining"
	case backtickOrSubshell.MatchString(command):
		return "command substitution"
	case strings.ContainsAny(command, "<>"):
		return "redirection"
	case strings.ContainsAny(command, "[]{}"):
		return "brace expansion"
	default:
		return "shell metacharacter"
	}
}

// suspiciousPathEntries are PATH entries that commonly precede a PATH-
// hijacking attack (spec.md §4.1 command resolution order, step 2: "Warn
// if PATH contains suspicious entries"). This is advisory only — callers
// log a warning and continue, since a non-empty match never denies on its
// own.
var suspiciousPathEntries = []string{"/tmp", "/var/tmp", "./", "../"}

// SuspiciousPathEntries returns which suspicious entries are present in
// pathEnv (a colon-separated PATH value).
func SuspiciousPathEntries(pathEnv string) []string {
	var found []string

	for _, entry := range strings.Split(pathEnv, string(filepath.ListSeparator)) {
		for _, suspicious := range suspiciousPathEntries {
			if entry == suspicious {
				found = append(found, entry)
			}
		}
	}

	return found
}

func splitCommand(command string) (program, argTail string) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", ""
	}

	if len(fields) == 1 {
		return fields[0], ""
	}

	return fields[0], strings.Join(fields[1:], " ")
}
