package notify

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

//go:embed templates/*
var templateFS embed.FS

var (
	subjectTmpl = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/confirmation_subject.txt"))
	textTmpl    = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/confirmation.txt"))
	htmlTmpl    = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/confirmation.html"))
)

// render returns the subject, plain text and HTML bodies for c.
func render(c Confirmation) (subject, text, html string, err error) {
	var buf bytes.Buffer
	if err := subjectTmpl.Execute(&buf, c); err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	subject = strings.TrimSpace(buf.String())

	buf.Reset()
	if err := textTmpl.Execute(&buf, c); err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	text = buf.String()

	buf.Reset()
	if err := htmlTmpl.Execute(&buf, c); err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	html = buf.String()
	return subject, text, html, nil
}
