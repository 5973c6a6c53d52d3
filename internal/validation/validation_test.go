package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type videoInput struct {
	Title    string   `json:"title" validate:"notblank,min=3,max=200"`
	Duration int      `json:"duration" validate:"gte=1,lte=86400"`
	Status   string   `json:"status" validate:"omitempty,oneof=draft published unlisted private"`
	Tags     []string `json:"tags" validate:"max=20,dive,max=50"`
}

func TestValidator_Struct(t *testing.T) {
	tests := []struct {
		name      string
		input     videoInput
		wantField string
		wantRule  string
	}{
		{
			name:  "valid",
			input: videoInput{Title: "Learn Go", Duration: 600, Status: "draft"},
		},
		{
			name:      "blank title",
			input:     videoInput{Title: "   ", Duration: 600},
			wantField: "title",
			wantRule:  "notblank",
		},
		{
			name:      "short title",
			input:     videoInput{Title: "Go", Duration: 600},
			wantField: "title",
			wantRule:  "min",
		},
		{
			name:      "zero duration",
			input:     videoInput{Title: "Learn Go", Duration: 0},
			wantField: "duration",
			wantRule:  "gte",
		},
		{
			name:      "duration over a day",
			input:     videoInput{Title: "Learn Go", Duration: 86401},
			wantField: "duration",
			wantRule:  "lte",
		},
		{
			name:      "unknown status",
			input:     videoInput{Title: "Learn Go", Duration: 60, Status: "archived"},
			wantField: "status",
			wantRule:  "oneof",
		},
		{
			name:      "too many tags",
			input:     videoInput{Title: "Learn Go", Duration: 60, Tags: make([]string, 21)},
			wantField: "tags",
			wantRule:  "max",
		},
		{
			name:      "tag too long",
			input:     videoInput{Title: "Learn Go", Duration: 60, Tags: []string{strings.Repeat("x", 51)}},
			wantField: "tags[0]",
			wantRule:  "max",
		},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var verr *Error
			require.True(t, errors.As(err, &verr), "expected *Error, got %v", err)
			require.NotEmpty(t, verr.Fields)
			assert.Equal(t, tt.wantField, verr.Fields[0].Field)
			assert.Equal(t, tt.wantRule, verr.Fields[0].Rule)
		})
	}
}

func TestValidator_Var(t *testing.T) {
	v := New()

	assert.NoError(t, v.Var("count", 5, "gte=1,lte=20"))

	err := v.Var("count", 21, "gte=1,lte=20")
	require.Error(t, err)
	assert.Equal(t, "count must be <= 20", err.Error())
}

func TestError_Message(t *testing.T) {
	err := &Error{Fields: []FieldError{
		{Field: "title", Rule: "min", Param: "3"},
		{Field: "duration", Rule: "gte", Param: "1"},
	}}

	assert.Equal(t, "title must be at least 3; duration must be >= 1", err.Error())
}
