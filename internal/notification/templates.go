package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var emailTemplates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// CustomerEmailData feeds the document-delivery email.
type CustomerEmailData struct {
	CustomerName  string
	CustomerEmail string
	DocumentTitle string
	Amount        float64
	Reference     string
	DownloadURL   string
}

// AdminEmailData feeds the internal sale notification.
type AdminEmailData struct {
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	DocumentTitle    string
	DocumentCategory string
	Amount           float64
	Reference        string
	PaymentDate      string
}

func renderTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}
