// Package parser turns linearized exam-prep text into question and answer
// records using line-level pattern recognizers and a small state machine.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// Line grammar of Chinese exam-prep documents: numbered stems, lettered
// options, and 答案/解析 marker lines. Question-start and option anchor at the
// start of a line; answer and explanation markers may appear anywhere in it.
var (
	questionStartRE = regexp.MustCompile(`^(\d+)[.、]\s*(.+)`)
	optionRE        = regexp.MustCompile(`^([A-D])[.、]\s*(.+)`)
	answerRE        = regexp.MustCompile(`答案[:：]\s*([A-D]+)`)
	explanationRE   = regexp.MustCompile(`解析[:：]\s*(.+)`)
	leadingNumberRE = regexp.MustCompile(`(\d+)[.、]`)

	// Unanchored variants for sweeping free-form text where line structure
	// is unreliable (model replies, re-wrapped extractions).
	questionScanRE = regexp.MustCompile(`(\d+)[.、]\s*(.+)`)
	optionScanRE   = regexp.MustCompile(`([A-D])[.、]\s*(.+)`)
)

// QuestionStart is a recognized question-start line.
type QuestionStart struct {
	Number int
	Text   string
}

// OptionLine is a recognized option line.
type OptionLine struct {
	Letter string
	Text   string
}

// NormalizeLine trims a raw line and folds full-width digits and letters to
// their canonical narrow forms so the recognizers see one consistent
// alphabet. PDF extraction of Chinese documents frequently yields full-width
// "１．" and "Ａ．" forms. Fold keeps 、 and the CJK markers intact.
func NormalizeLine(raw string) string {
	return width.Fold.String(strings.TrimSpace(raw))
}

// MatchQuestionStart recognizes "<digits><. or 、><text>" anchored at the
// start of the line.
func MatchQuestionStart(line string) (QuestionStart, bool) {
	m := questionStartRE.FindStringSubmatch(line)
	if m == nil {
		return QuestionStart{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return QuestionStart{}, false
	}
	return QuestionStart{Number: n, Text: m[2]}, true
}

// MatchOption recognizes "<letter A-D><. or 、><text>" anchored at the start
// of the line. Letters outside A-D never match and are therefore dropped at
// this stage rather than stored.
func MatchOption(line string) (OptionLine, bool) {
	m := optionRE.FindStringSubmatch(line)
	if m == nil {
		return OptionLine{}, false
	}
	return OptionLine{Letter: m[1], Text: m[2]}, true
}

// MatchAnswer recognizes the 答案 marker anywhere in the line and returns the
// captured letter run split into individual letters, order and duplicates
// preserved.
func MatchAnswer(line string) ([]string, bool) {
	m := answerRE.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	letters := make([]string, 0, len(m[1]))
	for _, r := range m[1] {
		letters = append(letters, string(r))
	}
	return letters, true
}

// MatchExplanation recognizes the 解析 marker anywhere in the line and
// returns the trailing text.
func MatchExplanation(line string) (string, bool) {
	m := explanationRE.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// MatchLeadingNumber finds the first "<digits><separator>" run in the line.
// Answer-key lines carry the question number this way.
func MatchLeadingNumber(line string) (int, bool) {
	m := leadingNumberRE.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ScanQuestionStarts sweeps text for question-start shapes without anchoring
// to line starts. Matches stop at line boundaries.
func ScanQuestionStarts(text string) []QuestionStart {
	var out []QuestionStart
	for _, m := range questionScanRE.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out = append(out, QuestionStart{Number: n, Text: m[2]})
	}
	return out
}

// ScanOptions sweeps text for option shapes without anchoring to line starts.
func ScanOptions(text string) []OptionLine {
	var out []OptionLine
	for _, m := range optionScanRE.FindAllStringSubmatch(text, -1) {
		out = append(out, OptionLine{Letter: m[1], Text: m[2]})
	}
	return out
}
