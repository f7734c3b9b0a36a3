package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name               string
		number, limit, def int
		want               Page
	}{
		{"defaults", 0, 0, 20, Page{Number: 1, Limit: 20}},
		{"explicit", 3, 10, 20, Page{Number: 3, Limit: 10}},
		{"capped", 1, 500, 20, Page{Number: 1, Limit: MaxLimit}},
		{"negative page", -4, 5, 20, Page{Number: 1, Limit: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.number, tt.limit, tt.def))
		})
	}
}

func TestPageInfo(t *testing.T) {
	p := New(2, 10, 20)
	assert.Equal(t, 10, p.Offset())

	info := p.Info(25)
	assert.Equal(t, &Info{CurrentPage: 2, TotalPages: 3, Total: 25, Limit: 10}, info)
	assert.False(t, info.Last())

	assert.True(t, New(3, 10, 20).Info(25).Last())
	assert.True(t, New(1, 10, 20).Info(0).Last())

	var none *Info
	assert.True(t, none.Last())
}
