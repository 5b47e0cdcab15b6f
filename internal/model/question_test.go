package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveType(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want QuestionType
	}{
		{"zero answers maps to single by policy", 0, TypeSingle},
		{"one answer", 1, TypeSingle},
		{"two answers", 2, TypeMultiple},
		{"four answers", 4, TypeMultiple},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveType(tt.n))
		})
	}
}

func TestGrade(t *testing.T) {
	tests := []struct {
		name      string
		correct   []string
		submitted []string
		want      bool
	}{
		{"exact match", []string{"A"}, []string{"A"}, true},
		{"order ignored", []string{"A", "C"}, []string{"C", "A"}, true},
		{"duplicates collapse", []string{"A", "A", "B"}, []string{"B", "A"}, true},
		{"missing letter", []string{"A", "B"}, []string{"A"}, false},
		{"extra letter", []string{"A"}, []string{"A", "B"}, false},
		{"both empty", nil, nil, true},
		{"empty vs non-empty", nil, []string{"A"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Grade(tt.correct, tt.submitted))
		})
	}
}
