package poll

import (
	"bytes"
	"embed"
	"text/template"
)

//go:embed templates/*.txt
var templates embed.FS

var resultsTmpl = template.Must(template.ParseFS(templates, "templates/results.txt"))

// RenderResults renders the "Current Votes" listing of a poll.
func RenderResults(results []OptionResult) (string, error) {
	var buf bytes.Buffer
	if err := resultsTmpl.Execute(&buf, results); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderQuestion prefixes the question text with the header line, if any.
func RenderQuestion(header, text string) string {
	if header == "" {
		return text
	}
	return header + "\n\n" + text
}
