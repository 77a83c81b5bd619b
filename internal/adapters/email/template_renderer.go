package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"eventmanager/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// Template names understood by the renderer.
const (
	TemplateActivation       = "activation"
	TemplatePasswordReset    = "password_reset"
	TemplateRSVPConfirmation = "rsvp_confirmation"
	TemplateRSVPCancellation = "rsvp_cancellation"
)

// templateRenderer implements domain.EmailTemplateRenderer using embedded template files.
// Each template is parsed once at construction.
type templateRenderer struct {
	subjects map[string]*texttemplate.Template
	texts    map[string]*texttemplate.Template
	htmls    map[string]*htmltemplate.Template
}

// NewTemplateRenderer parses every known template from the embedded templates folder.
func NewTemplateRenderer() (domain.EmailTemplateRenderer, error) {
	r := &templateRenderer{
		subjects: make(map[string]*texttemplate.Template),
		texts:    make(map[string]*texttemplate.Template),
		htmls:    make(map[string]*htmltemplate.Template),
	}
	for _, name := range []string{TemplateActivation, TemplatePasswordReset, TemplateRSVPConfirmation, TemplateRSVPCancellation} {
		subject, err := parseText(name + "_subject.txt")
		if err != nil {
			return nil, err
		}
		text, err := parseText(name + ".txt")
		if err != nil {
			return nil, err
		}
		raw, err := templateFS.ReadFile("templates/" + name + ".html")
		if err != nil {
			return nil, fmt.Errorf("read %s.html: %w", name, err)
		}
		html, err := htmltemplate.New(name + ".html").Option("missingkey=error").Parse(string(raw))
		if err != nil {
			return nil, fmt.Errorf("parse %s.html: %w", name, err)
		}
		r.subjects[name] = subject
		r.texts[name] = text
		r.htmls[name] = html
	}
	return r, nil
}

func parseText(file string) (*texttemplate.Template, error) {
	raw, err := templateFS.ReadFile("templates/" + file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	t, err := texttemplate.New(file).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}
	return t, nil
}

// Render executes the named template (e.g. "activation") with data and returns subject, html, and text bodies.
func (r *templateRenderer) Render(templateName string, data any) (subject, htmlBody, textBody string, err error) {
	st, ok := r.subjects[templateName]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", templateName)
	}
	var buf bytes.Buffer
	if err := st.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	subject = strings.TrimSpace(buf.String())

	buf.Reset()
	if err := r.htmls[templateName].Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	htmlBody = buf.String()

	buf.Reset()
	if err := r.texts[templateName].Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	textBody = buf.String()
	return subject, htmlBody, textBody, nil
}
