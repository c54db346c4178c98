package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLikePrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{
			name:   "plain prefix passes through",
			prefix: "alice",
			want:   "alice",
		},
		{
			name:   "percent is literal",
			prefix: "%",
			want:   `\%`,
		},
		{
			name:   "underscore is literal",
			prefix: "a_b",
			want:   `a\_b`,
		},
		{
			name:   "backslash is escaped first",
			prefix: `a\%`,
			want:   `a\\\%`,
		},
		{
			name:   "empty prefix",
			prefix: "",
			want:   "",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, escapeLikePrefix(tc.prefix))
		})
	}
}
