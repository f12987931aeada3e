package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"nimal.perera@example.com": "Nimal Perera",
		"KAMALA_silva@example.com": "Kamala Silva",
		"sunil+fines@example.com":  "Sunil Fines",
		"driver42@example.com":     "Driver",
		"1234@example.com":         "",
		"":                         "",
		"no-at-sign":               "No At Sign",
	}
	for in, want := range tests {
		assert.Equal(t, want, DisplayName(in), in)
	}
}
