package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Eventos Especiais!!", "eventos-especiais"},
		{"Aquisição", "aquisicao"},
		{"Missões", "missoes"},
		{"Cantinas", "cantinas"},
		{"  Fundo   de Reforma  ", "fundo-de-reforma"},
		{"Ação & Graças", "acao-gracas"},
		{"CAPS LOCK", "caps-lock"},
		{"!!!", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.name), "Slugify(%q)", tc.name)
	}
}

func TestGenerateInitials(t *testing.T) {
	assert.Equal(t, "AR", GenerateInitials("Administrador Root"))
	assert.Equal(t, "JS", GenerateInitials("João da Silva"))
	assert.Equal(t, "V", GenerateInitials("Visitante"))
	assert.Equal(t, "?", GenerateInitials("   "))
}
