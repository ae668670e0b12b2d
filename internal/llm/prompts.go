package llm

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var prompts = template.Must(
	template.New("prompts").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.tmpl"))

// RenderPrompt expands a named embedded prompt template. Templates access
// fields of data via {{ .FieldName }} and the sprig function map.
func RenderPrompt(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering prompt %q: %w", name, err)
	}
	return buf.String(), nil
}
