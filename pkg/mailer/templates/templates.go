package templates

import (
	"bytes"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
)

// Small set of transactional templates keyed by name. Data keys come from
// mailer.EmailJob.Data.

const (
	Welcome        = "welcome"
	ProfileUpdated = "profile_updated"
)

type emailTemplate struct {
	Subject string
	Text    string
	HTML    string
}

var registry = map[string]emailTemplate{
	Welcome: {
		Subject: "Welcome to your new account",
		Text:    "Hi {{.Name}},\n\nYour account for {{.Email}} has been created.\n",
		HTML:    "<p>Hi {{.Name}},</p><p>Your account for <b>{{.Email}}</b> has been created.</p>",
	},
	ProfileUpdated: {
		Subject: "Your profile was updated",
		Text:    "Hi {{.Name}},\n\nYour profile details were updated.\n",
		HTML:    "<p>Hi {{.Name}},</p><p>Your profile details were updated.</p>",
	},
}

// Render renders the named template, returning subject, text, and HTML bodies.
func Render(name string, data map[string]any) (string, string, string, error) {
	t, ok := registry[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}

	text, err := renderText(t.Text, data)
	if err != nil {
		return "", "", "", err
	}
	html, err := renderHTML(t.HTML, data)
	if err != nil {
		return "", "", "", err
	}
	return t.Subject, text, html, nil
}

func renderText(body string, data map[string]any) (string, error) {
	tpl, err := texttpl.New("text").Parse(body)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderHTML(body string, data map[string]any) (string, error) {
	tpl, err := htmpl.New("html").Parse(body)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
