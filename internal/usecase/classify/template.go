package classify

import (
	"strconv"
	"strings"

	"tickermate/internal/domain/entity"
)

const taskInstructions = "Task: 1) Summarise potential market impact in ≤{word_limit} words. " +
	"2) Classify implied market sentiment (Bullish/Bearish/Neutral). " +
	"Return JSON with keys summary & sentiment only. No extra text."

// Template is a prompt with {text} and {word_limit} placeholders.
type Template struct {
	Name string
	Text string
}

var (
	// SocialTemplate frames a post from the tracked social profile.
	SocialTemplate = Template{
		Name: "social",
		Text: "Donald Trump posted the following on Truth Social.\n----\n{text}\n----\n\n" + taskInstructions,
	}

	// NewsTemplate frames an economic news article.
	NewsTemplate = Template{
		Name: "news",
		Text: "The following is an economic news article.\n----\n{text}\n----\n\n" + taskInstructions,
	}

	// StreamTemplate frames a retail investor message.
	StreamTemplate = Template{
		Name: "stream",
		Text: "The following message was posted on a retail investor stream.\n----\n{text}\n----\n\n" + taskInstructions,
	}
)

// TemplateFor returns the prompt template of a channel.
func TemplateFor(ch entity.Channel) Template {
	switch ch {
	case entity.ChannelNews:
		return NewsTemplate
	case entity.ChannelStream:
		return StreamTemplate
	default:
		return SocialTemplate
	}
}

// Render substitutes body and wordLimit into the template.
func (t Template) Render(body string, wordLimit int) string {
	return strings.NewReplacer(
		"{text}", body,
		"{word_limit}", strconv.Itoa(wordLimit),
	).Replace(t.Text)
}
