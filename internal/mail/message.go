// AngelaMos | 2026
// message.go

package mail

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

const TemplateActivateAccount = "activate_account"

type Message struct {
	To       string
	ToName   string
	Subject  string
	Template string
	Data     any
}

type ActivationData struct {
	Username         string
	ActivationCode   string
	ConfirmationURL  string
	ExpiresInMinutes int
}

//go:embed templates
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(
		htmltemplate.ParseFS(templateFS, "templates/*.html"),
	)
	textTemplates = texttemplate.Must(
		texttemplate.ParseFS(templateFS, "templates/*.txt"),
	)
)

// Render returns the html and plain text bodies for msg.
func Render(msg Message) (string, string, error) {
	var html, text bytes.Buffer

	if err := htmlTemplates.ExecuteTemplate(
		&html, msg.Template+".html", msg.Data,
	); err != nil {
		return "", "", fmt.Errorf("render %s html: %w", msg.Template, err)
	}

	if err := textTemplates.ExecuteTemplate(
		&text, msg.Template+".txt", msg.Data,
	); err != nil {
		return "", "", fmt.Errorf("render %s text: %w", msg.Template, err)
	}

	return html.String(), text.String(), nil
}
