// Package extract recovers structured question records from free-form
// completion-model replies. Replies range from clean JSON arrays through
// markdown-fenced or malformed near-JSON down to scattered prose, so recovery
// runs through an ordered list of strategies and the first one that yields
// records wins.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/quizbank/quizbank-cli/internal/model"
	"github.com/quizbank/quizbank-cli/internal/parser"
)

// optionWindow bounds how far past a question stem the rebuild strategy
// searches for option lines.
const optionWindow = 500

var (
	bracketSpanRE = regexp.MustCompile(`(?s)\[.*\]`)

	// Broader span shapes attempted with repair before decoding: a JSON
	// array of objects, a run of concatenated objects, and a span anchored
	// on the two field names every record carries.
	repairSpanREs = []*regexp.Regexp{
		regexp.MustCompile(`(?s)\[\s*\{.*\}\s*\]`),
		regexp.MustCompile(`(?s)\{.*\}.*\{.*\}`),
		regexp.MustCompile(`(?s)question_number.*question_text`),
	}

	fenceOpenRE  = regexp.MustCompile("```json\\s*")
	fenceCloseRE = regexp.MustCompile("```\\s*$")
	bareKeyRE    = regexp.MustCompile(`(\w+):`)
)

// strategy attempts one recovery approach. A nil or empty result means the
// strategy failed and the next one runs.
type strategy func(reply string) []model.Question

var strategies = []strategy{
	decodeWhole,
	decodeBracketSpan,
	decodeRepairedSpans,
	rebuildFromText,
}

// FromReply runs the recovery strategies in order and returns the first
// non-empty record list. It returns nil when every strategy is exhausted;
// it never panics and never reports an error, as the caller's contract is to
// fall back further on nothing-usable.
func FromReply(reply string) []model.Question {
	for _, s := range strategies {
		if qs := s(reply); len(qs) > 0 {
			return qs
		}
	}
	return nil
}

// decodeWhole parses the entire trimmed reply, accepting only a top-level
// JSON array.
func decodeWhole(reply string) []model.Question {
	return decodeList(strings.TrimSpace(reply))
}

// decodeBracketSpan decodes the first greedy [...] span, which tolerates
// prose before and after the array.
func decodeBracketSpan(reply string) []model.Question {
	span := bracketSpanRE.FindString(reply)
	if span == "" {
		return nil
	}
	return decodeList(span)
}

// decodeRepairedSpans tries each broader span pattern, repairs common
// malformations in every matched span, and decodes. First successful list,
// across all spans and patterns, wins.
func decodeRepairedSpans(reply string) []model.Question {
	for _, re := range repairSpanREs {
		for _, span := range re.FindAllString(reply, -1) {
			if qs := decodeList(repairJSON(span)); len(qs) > 0 {
				return qs
			}
		}
	}
	return nil
}

// repairJSON fixes the malformations models most often produce: markdown
// code fences, single-quoted strings, and unquoted object keys. Trailing
// commas are NOT repaired; spans carrying one still fail to decode and fall
// through to the next strategy.
func repairJSON(span string) string {
	span = fenceOpenRE.ReplaceAllString(span, "")
	span = fenceCloseRE.ReplaceAllString(span, "")
	span = strings.ReplaceAll(span, "'", `"`)
	// Quoting is global, so colons inside string values get mangled too.
	// Acceptable: a span that needed this repair was already damaged, and a
	// failed decode just moves on.
	span = bareKeyRE.ReplaceAllString(span, `"${1}":`)
	return span
}

// decodeList unmarshals s and accepts only a non-empty top-level array.
func decodeList(s string) []model.Question {
	var qs []model.Question
	if err := json.Unmarshal([]byte(s), &qs); err != nil {
		return nil
	}
	return qs
}

// rebuildFromText hand-assembles records by sweeping the raw reply with the
// same question-start and option patterns the rule-based parser uses. For
// each discovered question, options are searched in a bounded window after
// the stem and the answer is matched anywhere in the reply, anchored to that
// question's number.
func rebuildFromText(reply string) []model.Question {
	starts := parser.ScanQuestionStarts(reply)
	if len(starts) == 0 {
		return nil
	}

	out := make([]model.Question, 0, len(starts))
	for _, qs := range starts {
		q := model.Question{
			Number:  qs.Number,
			Text:    strings.TrimSpace(qs.Text),
			Options: map[string]string{},
			Type:    model.TypeSingle,
		}

		if idx := strings.Index(reply, qs.Text); idx >= 0 {
			end := idx + optionWindow
			if end > len(reply) {
				end = len(reply)
			}
			for _, opt := range parser.ScanOptions(reply[idx:end]) {
				q.Options[opt.Letter] = strings.TrimSpace(opt.Text)
			}
		}

		answerRE := regexp.MustCompile(fmt.Sprintf(`%d[^A-D]*答案[:：]\s*([A-D]+)`, qs.Number))
		if m := answerRE.FindStringSubmatch(reply); m != nil {
			for _, r := range m[1] {
				q.CorrectAnswers = append(q.CorrectAnswers, string(r))
			}
			q.Type = model.DeriveType(len(q.CorrectAnswers))
		}

		out = append(out, q)
	}
	return out
}
