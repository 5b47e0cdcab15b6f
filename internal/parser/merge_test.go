package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizbank/quizbank-cli/internal/model"
)

func TestMerge_RightBiasedOverwrite(t *testing.T) {
	questions := []model.Question{
		{
			Number:         1,
			Text:           "题干",
			CorrectAnswers: []string{"C"},
			Type:           model.TypeSingle,
			Explanation:    "题目侧的解析",
		},
	}
	answers := map[int]model.AnswerKey{
		1: {Number: 1, CorrectAnswers: []string{"A", "B"}, Explanation: "答案册的解析"},
	}

	got := Merge(questions, answers)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"A", "B"}, got[0].CorrectAnswers)
	assert.Equal(t, "答案册的解析", got[0].Explanation)
	assert.Equal(t, model.TypeMultiple, got[0].Type)
}

func TestMerge_NoMatchingKeyKeepsQuestionSide(t *testing.T) {
	questions := []model.Question{
		{Number: 7, CorrectAnswers: []string{"D"}, Type: model.TypeSingle, Explanation: "原有解析"},
	}

	got := Merge(questions, map[int]model.AnswerKey{})
	require.Len(t, got, 1)
	assert.Equal(t, []string{"D"}, got[0].CorrectAnswers)
	assert.Equal(t, "原有解析", got[0].Explanation)
}

func TestMerge_EmptyKeyDerivesSingle(t *testing.T) {
	// A key with zero answers still overwrites, and the derived type for an
	// empty set is single. This mirrors the established policy; the test
	// documents it rather than endorsing it.
	questions := []model.Question{
		{Number: 3, CorrectAnswers: []string{"A", "B"}, Type: model.TypeMultiple},
	}
	answers := map[int]model.AnswerKey{
		3: {Number: 3, Explanation: "只有解析没有答案"},
	}

	got := Merge(questions, answers)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].CorrectAnswers)
	assert.Equal(t, model.TypeSingle, got[0].Type)
}

func TestMerge_InPlaceSameSlice(t *testing.T) {
	questions := []model.Question{{Number: 1}}
	got := Merge(questions, map[int]model.AnswerKey{1: {Number: 1, CorrectAnswers: []string{"A"}}})
	assert.Equal(t, &questions[0], &got[0])
	assert.Equal(t, []string{"A"}, questions[0].CorrectAnswers)
}

func TestParseAndMerge_EndToEnd(t *testing.T) {
	questions := ParseQuestions("1. 启动过程组负责制定项目章程\nA. 启动过程组\nB. 规划过程组\n答案：A\n解析：见说明")
	answers := ParseAnswers("1. 答案：AB\n解析：答案册更正为多选")

	got := Merge(questions, answers)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"A", "B"}, got[0].CorrectAnswers)
	assert.Equal(t, model.TypeMultiple, got[0].Type)
	assert.Equal(t, "答案册更正为多选", got[0].Explanation)
}
