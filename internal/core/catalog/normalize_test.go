package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "olive oil", Fold("  Olive\t  OIL "))
	assert.Equal(t, "", Fold("   "))
	assert.Equal(t, "crème fraîche", Fold("CRÈME Fraîche"))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Eggs", "egg"},
		{"tomatoes", "tomatoe"},
		{"pies", "pie"},
		{"cookies", "cookie"},
		{"quiches", "quiche"},
		{"ties", "tie"},
		{"hummus", "hummu"},
		{"gas", "gas"},
		{"bus", "bus"},
		{"salt", "salt"},
		{"  Green   Onions ", "green onion"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestVariants(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Tomatoes", []string{"tomatoes", "tomatoe", "tomato"}},
		{"berries", []string{"berries", "berrie", "berri", "berry"}},
		{"pies", []string{"pies", "pie"}},
		{"peaches", []string{"peaches", "peache", "peach"}},
		{"salt", []string{"salt"}},
		{"  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Variants(tt.in))
		})
	}
}

func TestSameName(t *testing.T) {
	assert.True(t, SameName("Tomatoes", "tomato"))
	assert.True(t, SameName("EGG", " eggs "))
	assert.True(t, SameName("cookies", "Cookie"))
	assert.True(t, SameName("berries", "berry"))
	assert.False(t, SameName("egg", "eggplant"))
	assert.False(t, SameName("", ""))
}
