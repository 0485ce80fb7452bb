package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageFilter(t *testing.T) {
	tests := []struct {
		name           string
		page, size     int
		wantPage, want int
		wantOffset     int
	}{
		{"defaults", 0, 0, 1, 20, 0},
		{"third page", 3, 10, 3, 10, 20},
		{"clamped size", 2, 500, 2, 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewPageFilter(tt.page, tt.size)
			assert.Equal(t, tt.wantPage, f.Page)
			assert.Equal(t, tt.want, f.Limit())
			assert.Equal(t, tt.wantOffset, f.Offset())
		})
	}
}
