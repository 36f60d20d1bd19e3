package utils

import "strings"

// RenderTemplate substitutes {{name}} placeholders in tmpl with values
// from vars. Placeholders with no matching variable are left literal, so
// a bad template is visible in the output instead of silently truncated.
func RenderTemplate(tmpl string, vars map[string]string) string {
	var b strings.Builder
	for {
		start := strings.Index(tmpl, "{{")
		if start < 0 {
			b.WriteString(tmpl)
			return b.String()
		}
		end := strings.Index(tmpl[start:], "}}")
		if end < 0 {
			b.WriteString(tmpl)
			return b.String()
		}
		end += start
		name := strings.TrimSpace(tmpl[start+2 : end])
		b.WriteString(tmpl[:start])
		if v, ok := vars[name]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(tmpl[start : end+2])
		}
		tmpl = tmpl[end+2:]
	}
}
