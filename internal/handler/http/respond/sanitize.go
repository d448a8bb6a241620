package respond

import "regexp"

var (
	// Anthropic keys also match the OpenAI pattern, so they go first.
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9\-_]+`)
	openaiKeyPattern    = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)
	dsnPasswordPattern  = regexp.MustCompile(`://([^:/@]+):([^@]+)@`)
	tokenParamPattern   = regexp.MustCompile(`(?i)(api_token|api_key|token)=[^&\s"]+`)
	bearerPattern       = regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-_.=]+`)
)

// SanitizeError returns err's message with API keys, query tokens and DSN
// passwords masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = dsnPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	msg = tokenParamPattern.ReplaceAllString(msg, "$1=****")
	msg = bearerPattern.ReplaceAllString(msg, "Bearer ****")
	return msg
}
