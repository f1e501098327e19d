package descriptions

import (
	"fmt"
	"strconv"
	"strings"
)

// LabelPrefix starts every clip label, e.g. "Клип 1".
const LabelPrefix = "Клип"

// MaxTranscriptRunes bounds each transcript embedded in the prompt.
const MaxTranscriptRunes = 1000

// Entry is one clip's transcript keyed by its label.
type Entry struct {
	Label      string
	Transcript string
}

// Label returns the label of the n-th clip (1-based).
func Label(n int) string { return fmt.Sprintf("%s %d", LabelPrefix, n) }

// LabelIndex returns the 0-based artifact index encoded by the label's
// trailing integer.
func LabelIndex(label string) (int, bool) {
	f := strings.Fields(label)
	if len(f) < 2 || f[0] != LabelPrefix {
		return 0, false
	}
	n, err := strconv.Atoi(f[len(f)-1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}

var quoteReplacer = strings.NewReplacer("“", `"`, "”", `"`, "„", `"`, "«", `"`, "»", `"`)

// NormalizeQuotes maps typographic quotes to plain double quotes.
func NormalizeQuotes(s string) string { return quoteReplacer.Replace(s) }

const promptHeader = `Ты — SMM-специалист и автор коротких видео для TikTok.
Для каждого клипа ниже:
- если есть субтитры, напиши 1–2 цепляющих предложения и добавь 2–4 хештега;
- если субтитров нет, предложи 3–5 популярных хештегов.
Ответь только JSON-объектом без пояснений, ключи — названия клипов:
{
  "Клип 1": "...",
  "Клип 2": "..."
}

Субтитры:
`

// BuildPrompt renders one prompt for the whole batch. Transcripts are
// quote-normalized and cut to MaxTranscriptRunes.
func BuildPrompt(entries []Entry) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	for _, e := range entries {
		b.WriteString(e.Label)
		b.WriteString(": ")
		b.WriteString(truncateRunes(NormalizeQuotes(e.Transcript), MaxTranscriptRunes))
		b.WriteString("\n\n")
	}
	return b.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
