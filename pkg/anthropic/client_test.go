package anthropic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClient implements Client for testing.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MessageResponse), args.Error(1)
}

func TestMockClientCreateMessage(t *testing.T) {
	client := new(MockClient)
	want := &MessageResponse{
		ID:    "msg_1",
		Model: "claude-haiku-4-5-20251001",
		Content: []ContentBlock{
			{Type: "text", Text: "[]"},
		},
		StopReason: "end_turn",
	}
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(want, nil)

	got, err := client.CreateMessage(context.Background(), MessageRequest{
		Model:     "claude-haiku-4-5-20251001",
		MaxTokens: 2048,
		Messages:  []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	client.AssertExpectations(t)
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		name string
		resp MessageResponse
		want string
	}{
		{
			name: "single block",
			resp: MessageResponse{Content: []ContentBlock{{Type: "text", Text: "hello"}}},
			want: "hello",
		},
		{
			name: "concatenates text blocks",
			resp: MessageResponse{Content: []ContentBlock{
				{Type: "text", Text: "a"},
				{Type: "text", Text: "b"},
			}},
			want: "ab",
		},
		{
			name: "skips non-text blocks",
			resp: MessageResponse{Content: []ContentBlock{
				{Type: "thinking", Text: "hmm"},
				{Type: "text", Text: "answer"},
			}},
			want: "answer",
		},
		{
			name: "empty content",
			resp: MessageResponse{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resp.Text())
		})
	}
}
