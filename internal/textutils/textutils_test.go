package textutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  COOP PRONTO  ", "COOP PRONTO"},
		{"COOP   PRONTO\tZUERICH", "COOP PRONTO ZUERICH"},
		{"", ""},
		{"   ", ""},
		{"SALARY", "SALARY"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeWhitespace(tt.input))
	}
}

func TestCleanAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"-12.50", "-12.50"},
		{"CHF 1'234.56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"-12,50", "-12.50"},
		{"$99", "99"},
		{"€ 5.00", "5.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanAmount(tt.input))
	}
}
