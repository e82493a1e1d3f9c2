// Package redact scrubs credentials, personal data and internal details out
// of strings before they are logged or sent to clients.
package redact

import "regexp"

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// Order matters: connection strings go before hosts and emails so their
// userinfo is replaced as a whole.
var rules = []rule{
	{regexp.MustCompile(`(?i)\b(postgres(?:ql)?|redis|rediss|mysql)://[^\s@/]*@`), "[REDACTED_CREDENTIAL]@"},
	{regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`), "[REDACTED_JWT]"},
	{regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/=-]{8,}`), "Bearer [REDACTED_TOKEN]"},
	{regexp.MustCompile(`(?i)(password|passwd|pwd|secret|api[_-]?key|token)(\s*[=:]\s*['"]?)[^'"&\s]{3,}`), "${1}${2}[REDACTED]"},
	{regexp.MustCompile(`\$2[aby]\$\d{2}\$[./A-Za-z0-9]{53}`), "[REDACTED_HASH]"},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[REDACTED_EMAIL]"},
	{regexp.MustCompile(`(?is)\b(SELECT|INSERT\s+INTO|UPDATE|DELETE\s+FROM)\b.*?(\bFROM\b|\bSET\b|\bVALUES\b|\bWHERE\b).*`), "[REDACTED_SQL]"},
	{regexp.MustCompile(`(?:goroutine \d+ \[|panic:)[\s\S]*`), "[STACK_TRACE_REDACTED]"},
	{regexp.MustCompile(`(?:/[\w.-]+){2,}`), "[REDACTED_PATH]"},
}

// String returns input with every sensitive fragment replaced.
func String(input string) string {
	if input == "" {
		return input
	}
	out := input
	for _, r := range rules {
		out = r.pattern.ReplaceAllString(out, r.placeholder)
	}
	return out
}

// Error redacts err.Error(); a nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
