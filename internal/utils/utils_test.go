package utils

import (
	"strings"
	"testing"
)

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		vars map[string]string
		want string
	}{
		{"plain", "no placeholders", nil, "no placeholders"},
		{"single", "hello {{name}}", map[string]string{"name": "world"}, "hello world"},
		{"repeated", "{{a}} and {{a}}", map[string]string{"a": "x"}, "x and x"},
		{"multiple", `{{actor}} moved "{{task}}"`, map[string]string{"actor": "bob", "task": "ship"}, `bob moved "ship"`},
		{"unknown stays literal", "hi {{who}}", map[string]string{"name": "x"}, "hi {{who}}"},
		{"unterminated", "broken {{tail", map[string]string{"tail": "x"}, "broken {{tail"},
		{"padded name", "{{ name }}", map[string]string{"name": "x"}, "x"},
		{"empty value", "a{{v}}b", map[string]string{"v": ""}, "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderTemplate(tt.tmpl, tt.vars); got != tt.want {
				t.Errorf("RenderTemplate(%q) = %q, want %q", tt.tmpl, got, tt.want)
			}
		})
	}
}

func TestColorForNameDeterministic(t *testing.T) {
	if ColorForName("backend") != ColorForName("backend") {
		t.Error("same name produced different colors")
	}
	c := ColorForName("anything")
	if !strings.HasPrefix(c, "#") || len(c) != 7 {
		t.Errorf("color %q is not a hex value", c)
	}
	found := false
	for _, p := range palette {
		if p == c {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("color %q not from the palette", c)
	}
}
