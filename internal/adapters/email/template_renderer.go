package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"
	texttemplate "text/template"
	"time"

	"moviemate/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// displayLayout is how datetimes appear in party emails. Times are always shown in UTC.
const displayLayout = "Mon, 02 Jan 2006 15:04 MST"

var funcs = map[string]any{
	"when": func(t time.Time) string { return t.UTC().Format(displayLayout) },
}

// Each party email is three files: <name>_subject.txt, <name>.txt and <name>.html.
type templateRenderer struct {
	once sync.Once
	text *texttemplate.Template
	html *template.Template
	err  error
}

// NewTemplateRenderer returns the renderer for invitation and finalized party
// emails. The embedded templates are parsed on first use.
func NewTemplateRenderer() domain.EmailTemplateRenderer {
	return &templateRenderer{}
}

func (r *templateRenderer) load() error {
	r.once.Do(func() {
		r.text, r.err = texttemplate.New("party-text").Funcs(funcs).ParseFS(templateFS, "templates/*.txt")
		if r.err != nil {
			return
		}
		r.html, r.err = template.New("party-html").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	})
	return r.err
}

type executor interface {
	Execute(w io.Writer, data any) error
}

// Render fills the named party email ("invitation" or "finalized") with data.
// The subject is trimmed to a single line.
func (r *templateRenderer) Render(name string, data any) (subject, htmlBody, textBody string, err error) {
	if err := r.load(); err != nil {
		return "", "", "", fmt.Errorf("parse email templates: %w", err)
	}
	parts := []struct {
		file string
		dst  *string
	}{
		{name + "_subject.txt", &subject},
		{name + ".html", &htmlBody},
		{name + ".txt", &textBody},
	}
	for _, p := range parts {
		out, err := r.execute(p.file, data)
		if err != nil {
			return "", "", "", fmt.Errorf("render %s: %w", p.file, err)
		}
		*p.dst = out
	}
	return strings.TrimSpace(subject), htmlBody, textBody, nil
}

func (r *templateRenderer) execute(file string, data any) (string, error) {
	var t executor
	if strings.HasSuffix(file, ".html") {
		if h := r.html.Lookup(file); h != nil {
			t = h
		}
	} else if tt := r.text.Lookup(file); tt != nil {
		t = tt
	}
	if t == nil {
		return "", fmt.Errorf("email template %q not found", file)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
