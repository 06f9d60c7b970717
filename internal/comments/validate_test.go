package comments_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"podmatch/internal/comments"
)

func TestValidateBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		min     int
		want    string
		wantErr string
	}{
		{name: "whitespace only", body: "  ", min: 3, wantErr: "Comment cannot be empty"},
		{name: "empty", body: "", min: 3, wantErr: "Comment cannot be empty"},
		{name: "too short", body: "ok", min: 3, wantErr: "Comment must be at least 3 characters"},
		{name: "trimmed too short", body: "  ok \n", min: 3, wantErr: "Comment must be at least 3 characters"},
		{name: "accepted", body: "okay", min: 3, want: "okay"},
		{name: "trimmed", body: "  nice one  ", min: 3, want: "nice one"},
		{name: "default minimum", body: "hi", min: 0, wantErr: "Comment must be at least 3 characters"},
		{name: "custom minimum", body: "hello", min: 10, wantErr: "Comment must be at least 10 characters"},
		{name: "combining marks count once", body: "cafe\u0301", min: 4, want: "caf\u00e9"},
		{name: "decomposed too short", body: "e\u0301e\u0301", min: 3, wantErr: "Comment must be at least 3 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := comments.ValidateBody(tt.body, tt.min)
			if tt.wantErr != "" {
				var vErr *comments.ValidationError
				require.True(t, errors.As(err, &vErr), "expected ValidationError, got %v", err)
				require.Equal(t, tt.wantErr, vErr.Message)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
