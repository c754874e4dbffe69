package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Normalize(t *testing.T) {
	for _, tt := range []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{"Defaults", PageRequest{}, PageRequest{Size: DefaultPageSize}},
		{"NegativeNumber", PageRequest{Number: -3, Size: 5}, PageRequest{Size: 5}},
		{"Capped", PageRequest{Number: 2, Size: 500, Ascending: true}, PageRequest{Number: 2, Size: MaxPageSize, Ascending: true}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
	assert.Equal(t, 40, PageRequest{Number: 2, Size: 20}.Offset())
}

func TestPage_TotalPages(t *testing.T) {
	assert.Equal(t, 0, (&Page{Size: 20}).TotalPages())
	assert.Equal(t, 1, (&Page{Size: 20, Total: 20}).TotalPages())
	assert.Equal(t, 2, (&Page{Size: 20, Total: 21}).TotalPages())
	assert.Equal(t, 0, (&Page{Total: 5}).TotalPages())
}
