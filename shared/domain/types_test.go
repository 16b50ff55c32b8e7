package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPage(t *testing.T) {
	tests := []struct {
		name     string
		page     Page
		total    int
		returned int
		skip     int
		isNext   bool
	}{
		{"first page with more", Page{Number: 1, Size: 20}, 45, 20, 0, true},
		{"last partial page", Page{Number: 3, Size: 20}, 45, 5, 40, false},
		{"exact multiple", Page{Number: 2, Size: 20}, 40, 20, 20, false},
		{"out of range", Page{Number: 9, Size: 20}, 40, 0, 160, false},
		{"empty collection", Page{Number: 1, Size: 20}, 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.skip, tt.page.Skip())
			assert.Equal(t, tt.isNext, tt.page.IsNext(tt.total, tt.returned))
		})
	}
}

func TestThreadIsRoot(t *testing.T) {
	parent := "p"
	assert.True(t, (&Thread{}).IsRoot())
	assert.False(t, (&Thread{ParentId: &parent}).IsRoot())
}
