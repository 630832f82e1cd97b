package email

import (
	htmltemplate "html/template"
	texttemplate "text/template"

	"tenantdesk/utils"
)

var templateFuncs = map[string]any{
	"humanize": utils.HumanizeTime,
	"date":     utils.FormatDate,
	"plural":   utils.Plural,
}

const subjectTemplates = `
{{define "notification"}}{{if .Title}}{{.Title}}{{else}}New notification from {{.OrganizationName}}{{end}}{{end}}
{{define "transaction_notification"}}{{if .Title}}{{.Title}}{{else}}Update on transaction {{.TransactionID}}{{end}}{{end}}
{{define "invitation"}}{{.InviterName}} invited you to {{.OrganizationName}}{{end}}
`

const textTemplates = `
{{define "failures"}}{{if .Failures}}

{{len .Failures}} deliver{{if eq (len .Failures) 1}}y{{else}}ies{{end}} of this notification failed:
{{range .Failures}}- {{.Destination}}{{if .Method}} ({{.Method}}){{end}}: {{.Error}}
{{end}}{{end}}{{end}}
{{define "notification"}}{{.Message}}{{template "failures" .}}

Sent {{date .CreatedAt}} by {{.OrganizationName}}.
{{end}}
{{define "transaction_notification"}}{{.Message}}

Transaction: {{.TransactionID}}
{{if .ActionURL}}View it at {{.ActionURL}}
{{end}}{{template "failures" .}}
Sent {{date .CreatedAt}} by {{.OrganizationName}}.
{{end}}
{{define "invitation"}}{{.InviterName}} invited you to join {{.OrganizationName}}.

Accept the invitation at {{.ActionURL}}
{{end}}
`

const htmlTemplates = `
{{define "failures"}}{{if .Failures}}
<p><strong>{{len .Failures}} deliver{{if eq (len .Failures) 1}}y{{else}}ies{{end}} of this notification failed:</strong></p>
<ul>{{range .Failures}}<li><code>{{.Destination}}</code>{{if .Method}} ({{.Method}}){{end}}: {{.Error}}</li>{{end}}</ul>
{{end}}{{end}}
{{define "notification"}}<html><body>
{{if .Title}}<h2>{{.Title}}</h2>{{end}}
<p>{{.Message}}</p>
{{template "failures" .}}
<p style="color:#888">Sent {{humanize .CreatedAt}} by {{.OrganizationName}}.</p>
</body></html>{{end}}
{{define "transaction_notification"}}<html><body>
{{if .Title}}<h2>{{.Title}}</h2>{{end}}
<p>{{.Message}}</p>
<p>Transaction <code>{{.TransactionID}}</code>{{if .ActionURL}} &middot; <a href="{{.ActionURL}}">View transaction</a>{{end}}</p>
{{template "failures" .}}
<p style="color:#888">Sent {{humanize .CreatedAt}} by {{.OrganizationName}}.</p>
</body></html>{{end}}
{{define "invitation"}}<html><body>
<p>{{.InviterName}} invited you to join <strong>{{.OrganizationName}}</strong>.</p>
<p><a href="{{.ActionURL}}">Accept invitation</a></p>
</body></html>{{end}}
`

var (
	subjects  = texttemplate.Must(texttemplate.New("subjects").Funcs(templateFuncs).Parse(subjectTemplates))
	textBody  = texttemplate.Must(texttemplate.New("text").Funcs(templateFuncs).Parse(textTemplates))
	htmlBody  = htmltemplate.Must(htmltemplate.New("html").Funcs(templateFuncs).Parse(htmlTemplates))
)
