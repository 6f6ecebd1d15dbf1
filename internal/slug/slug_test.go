// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import "testing"

func TestGenerate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Herramientas", "herramientas"},
		{"spaces", "Herramientas de Mano", "herramientas-de-mano"},
		{"accents", "Pinturería & Hogar", "pintureria-hogar"},
		{"enye", "Ñandubay", "nandubay"},
		{"punctuation", "Taladro 13mm (750W)!", "taladro-13mm-750w"},
		{"underscores", "foo_bar_baz", "foo-bar-baz"},
		{"separator runs", "a  -  b __ c", "a-b-c"},
		{"leading trailing", "  --Ofertas--  ", "ofertas"},
		{"numbers", "Hogar 2026", "hogar-2026"},
		{"all stripped", "¡¿•€", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.in); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUnique(t *testing.T) {
	taken := map[string]bool{
		"martillo":   true,
		"martillo-1": true,
		"martillo-2": true,
	}
	lookup := func(s string) bool { return taken[s] }

	if got := Unique("pinza", lookup); got != "pinza" {
		t.Errorf("free base: got %q, want pinza", got)
	}
	if got := Unique("martillo", lookup); got != "martillo-3" {
		t.Errorf("taken base: got %q, want martillo-3", got)
	}
	if got := Unique("", lookup); got != "n-a" {
		t.Errorf("empty base: got %q, want n-a", got)
	}
}
