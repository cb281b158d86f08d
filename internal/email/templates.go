package email

import (
	"bytes"
	"fmt"
	"text/template"
)

const (
	TemplateExpiryReminder = "membership_expiry_reminder"
	TemplatePurchased      = "membership_purchased"
)

type mailTemplate struct {
	subject *template.Template
	body    *template.Template
}

var templates = map[string]mailTemplate{
	TemplateExpiryReminder: mustTemplate(TemplateExpiryReminder,
		`Your {{.type_name}} membership expires on {{.expiry_date}}`,
		`Hi {{.member_name}},

Your {{.type_name}} membership ends on {{.expiry_date}} ({{.days_left}} day(s) left).
{{- if .visits_remaining}}
Visits remaining: {{.visits_remaining}}
{{- end}}

Renew at the front desk or online to keep training without a break.

- Sport Club Team`),
	TemplatePurchased: mustTemplate(TemplatePurchased,
		`Membership confirmed - {{.type_name}}`,
		`Hi {{.member_name}},

Thanks for your purchase!

Membership: {{.type_name}}
Valid: {{.start_date}} - {{.expiry_date}}
{{- if .visits_limit}}
Visits: {{.visits_limit}}
{{- end}}
Price: {{.price}}
{{- if .discount}}
Discount: {{.discount}}
{{- end}}

See you at the club!

- Sport Club Team`),
}

func mustTemplate(name, subject, body string) mailTemplate {
	return mailTemplate{
		subject: template.Must(template.New(name + ":subject").Option("missingkey=zero").Parse(subject)),
		body:    template.Must(template.New(name + ":body").Option("missingkey=zero").Parse(body)),
	}
}

// Render returns the subject and body of the named template.
func Render(name string, data map[string]interface{}) (string, string, error) {
	tpl, ok := templates[name]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}

	var subject, body bytes.Buffer
	if err := tpl.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := tpl.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("render %s body: %w", name, err)
	}
	return subject.String(), body.String(), nil
}
