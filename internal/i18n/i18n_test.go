package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en", LangEN},
		{"EN-US", LangEN},
		{"zh", LangZH},
		{"zh-CN", LangZH},
		{"cn", LangZH},
		{"fr", LangEN},
		{"", LangEN},
		{"  zh  ", LangZH},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestT(t *testing.T) {
	assert.Contains(t, T(LangEN, "chat.greeting.intro"), "assistant created by Eeviriyi")
	assert.Contains(t, T(LangZH, "chat.greeting.intro"), "小助手")

	// Unknown language falls back to English.
	assert.Equal(t, T(LangEN, "chat.title.default"), T("ja", "chat.title.default"))

	// Unknown key returns itself.
	assert.Equal(t, "no.such.key", T(LangEN, "no.such.key"))
}
