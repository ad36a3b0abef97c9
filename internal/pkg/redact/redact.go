// Package redact masks credentials that upstream errors may echo back,
// so error messages can be logged safely.
package redact

import "regexp"

// Patterns are applied in order; the more specific ones come first.
var (
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	// Does not match keys that were already masked (contain '*').
	openaiKeyPattern = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)
	googleKeyPattern = regexp.MustCompile(`AIza[0-9A-Za-z_-]{20,}`)
	// Key passed as a query parameter, e.g. ?key=... on the Gemini REST API.
	queryKeyPattern = regexp.MustCompile(`([?&](?:key|api_key|access_token)=)[^&\s"]+`)
	// Telegram bot token in the API path: /bot<id>:<secret>/
	telegramTokenPattern = regexp.MustCompile(`/bot\d+:[A-Za-z0-9_-]+`)
	// Discord and Slack webhook tokens.
	discordWebhookPattern = regexp.MustCompile(`(/api/webhooks/\d+/)[A-Za-z0-9_-]+`)
	slackWebhookPattern   = regexp.MustCompile(`(hooks\.slack\.com/services/)[A-Za-z0-9/]+`)
	userinfoPattern       = regexp.MustCompile(`://([^:/\s]+):([^@\s]+)@`)
)

// String returns s with every known credential pattern masked.
func String(s string) string {
	s = anthropicKeyPattern.ReplaceAllString(s, "sk-ant-****")
	s = openaiKeyPattern.ReplaceAllString(s, "sk-****")
	s = googleKeyPattern.ReplaceAllString(s, "AIza****")
	s = queryKeyPattern.ReplaceAllString(s, "${1}****")
	s = telegramTokenPattern.ReplaceAllString(s, "/bot****")
	s = discordWebhookPattern.ReplaceAllString(s, "${1}****")
	s = slackWebhookPattern.ReplaceAllString(s, "${1}****")
	s = userinfoPattern.ReplaceAllString(s, "://$1:****@")
	return s
}

// Error returns the masked message of err, or "" for nil.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
