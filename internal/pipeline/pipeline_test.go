package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizbank/quizbank-cli/internal/config"
	"github.com/quizbank/quizbank-cli/internal/model"
	"github.com/quizbank/quizbank-cli/pkg/anthropic"
)

// fakeCompleter records the prompt it received and returns a canned reply.
type fakeCompleter struct {
	reply  string
	err    error
	prompt string
	calls  int
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.reply, f.err
}

const sampleText = "1. 启动过程组负责制定项目章程\nA. 正确\nB. 错误\n答案：A\n解析：见说明"

func TestParseQuestions_UsesCompleterReply(t *testing.T) {
	fake := &fakeCompleter{
		reply: `[{"question_number": 7, "question_text": "题干", "options": {"A": "甲"}, "question_type": "single", "correct_answers": ["A"], "explanation": ""}]`,
	}
	p := NewParser(fake, 0)

	questions := p.ParseQuestions(context.Background(), sampleText)

	require.Len(t, questions, 1)
	assert.Equal(t, 7, questions[0].Number)
	assert.Equal(t, 1, fake.calls)
	assert.Contains(t, fake.prompt, sampleText)
	assert.Contains(t, fake.prompt, "question_number")
}

func TestParseQuestions_NilCompleterIsRuleBased(t *testing.T) {
	p := NewParser(nil, 0)

	questions := p.ParseQuestions(context.Background(), sampleText)

	require.Len(t, questions, 1)
	assert.Equal(t, 1, questions[0].Number)
	assert.Equal(t, []string{"A"}, questions[0].CorrectAnswers)
}

func TestParseQuestions_CompleterErrorFallsBack(t *testing.T) {
	fake := &fakeCompleter{err: eris.New("boom")}
	p := NewParser(fake, 0)

	questions := p.ParseQuestions(context.Background(), sampleText)

	require.Len(t, questions, 1)
	assert.Equal(t, 1, questions[0].Number)
	assert.Equal(t, "启动过程组负责制定项目章程", questions[0].Text)
}

func TestParseQuestions_UnusableReplyFallsBack(t *testing.T) {
	fake := &fakeCompleter{reply: "抱歉，我无法解析这段文本。"}
	p := NewParser(fake, 0)

	questions := p.ParseQuestions(context.Background(), sampleText)

	require.Len(t, questions, 1)
	assert.Equal(t, 1, questions[0].Number)
}

func TestParseQuestions_TruncatesPromptNotFallback(t *testing.T) {
	// Question sits beyond the prompt cap. The prompt must be truncated
	// but the rule-based fallback still sees the full text.
	text := strings.Repeat("填", 100) + "\n" + sampleText
	fake := &fakeCompleter{reply: "not json"}
	p := NewParser(fake, 50)

	questions := p.ParseQuestions(context.Background(), text)

	assert.Equal(t, 50+len([]rune(buildPrompt(""))), len([]rune(fake.prompt)))
	require.Len(t, questions, 1)
	assert.Equal(t, 1, questions[0].Number)
}

func TestParseQuestions_ShortInputNotTruncated(t *testing.T) {
	fake := &fakeCompleter{reply: "[]"}
	p := NewParser(fake, 15000)

	p.ParseQuestions(context.Background(), sampleText)

	assert.Contains(t, fake.prompt, sampleText)
}

func TestParseAnswersAndMerge(t *testing.T) {
	p := NewParser(nil, 0)

	questions := p.ParseQuestions(context.Background(), "1. 题干\nA. 甲\nB. 乙")
	answers := p.ParseAnswers("1. 答案：AB\n解析：两者皆可")
	merged := p.Merge(questions, answers)

	require.Len(t, merged, 1)
	assert.Equal(t, []string{"A", "B"}, merged[0].CorrectAnswers)
	assert.Equal(t, model.TypeMultiple, merged[0].Type)
	assert.Equal(t, "两者皆可", merged[0].Explanation)
}

func TestNewCompleter(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantNil bool
		wantErr string
	}{
		{
			name:    "none provider",
			cfg:     config.Config{LLM: config.LLMConfig{Provider: "none"}},
			wantNil: true,
		},
		{
			name:    "empty provider",
			cfg:     config.Config{},
			wantNil: true,
		},
		{
			name: "gemini",
			cfg: config.Config{
				LLM:    config.LLMConfig{Provider: "gemini"},
				Gemini: config.GeminiConfig{Key: "k", TimeoutSecs: 30},
			},
		},
		{
			name:    "gemini without key",
			cfg:     config.Config{LLM: config.LLMConfig{Provider: "gemini"}},
			wantErr: "gemini.key",
		},
		{
			name: "anthropic",
			cfg: config.Config{
				LLM:       config.LLMConfig{Provider: "anthropic"},
				Anthropic: config.AnthropicConfig{Key: "k", Model: "claude-haiku-4-5-20251001"},
			},
		},
		{
			name:    "anthropic without key",
			cfg:     config.Config{LLM: config.LLMConfig{Provider: "anthropic"}},
			wantErr: "anthropic.key",
		},
		{
			name:    "unknown provider",
			cfg:     config.Config{LLM: config.LLMConfig{Provider: "openai"}},
			wantErr: "unknown llm provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer, err := NewCompleter(&tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, completer)
			} else {
				assert.NotNil(t, completer)
			}
		})
	}
}

// fakeAnthropicClient implements anthropic.Client for completer tests.
type fakeAnthropicClient struct {
	replyText string
	gotReq    anthropic.MessageRequest
}

func (f *fakeAnthropicClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.gotReq = req
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: f.replyText}},
	}, nil
}

func TestAnthropicCompleterComplete(t *testing.T) {
	fake := &fakeAnthropicClient{replyText: "[]"}
	c := &anthropicCompleter{client: fake, model: "claude-haiku-4-5-20251001", maxTokens: 2048}

	text, err := c.Complete(context.Background(), "parse this")
	require.NoError(t, err)
	assert.Equal(t, "[]", text)
	assert.Equal(t, "claude-haiku-4-5-20251001", fake.gotReq.Model)
	assert.Equal(t, int64(2048), fake.gotReq.MaxTokens)
	require.Len(t, fake.gotReq.Messages, 1)
	assert.Equal(t, anthropic.Message{Role: "user", Content: "parse this"}, fake.gotReq.Messages[0])
}
