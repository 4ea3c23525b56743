package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"Nil", nil, 0},
		{"Int", 7, 7},
		{"Float", float64(3), 3},
		{"Number", json.Number("5113"), 5113},
		{"String", " 42 ", 42},
		{"Bytes", []byte("9"), 9},
		{"Garbage", "abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToInt(tt.in))
		})
	}
}

func TestToString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"Nil", nil, ""},
		{"String", "  ACME  ", "ACME"},
		{"Number", json.Number("2485710934"), "2485710934"},
		{"LargeFloat", float64(2485710934), "2485710934"},
		{"Int", 12, "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToString(tt.in))
		})
	}
}

func TestToBool(t *testing.T) {
	assert.True(t, ToBool(true))
	assert.True(t, ToBool("S"))
	assert.True(t, ToBool(json.Number("1")))
	assert.False(t, ToBool("N"))
	assert.False(t, ToBool(nil))
}
