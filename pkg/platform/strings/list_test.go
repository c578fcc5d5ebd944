package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"  ", nil},
		{"a", []string{"a"}},
		{" k1:9092, k2:9092,,k1:9092", []string{"k1:9092", "k2:9092"}},
		{",,", []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitList(tt.in), "input %q", tt.in)
	}
}

func TestDedupeAndTrim(t *testing.T) {
	assert.Nil(t, DedupeAndTrim(nil))
	assert.Equal(t, []string{"foo", "bar"}, DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "}))
}
