package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskCode(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"SUMMER2024", "SU***24"},
		{"  SAVE10 ", "SA***10"},
		{"ABCDE", "AB***DE"},
		{"ABCD", "***"},
		{"", "***"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskCode(tt.code))
		})
	}
}
