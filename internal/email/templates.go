package email

import (
	"bytes"
	"fmt"
	"html/template"
)

const layout = `<!doctype html>
<html lang="es"><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body style="font-family:Arial,sans-serif;color:#111827;background:#f9fafb;padding:24px">
<div style="max-width:560px;margin:0 auto;background:#fff;border:1px solid #e5e7eb;border-radius:8px;padding:24px">
<h1 style="font-size:20px;color:#c2410c;margin-top:0">{{.Title}}</h1>
{{template "body" .}}
</div></body></html>`

const quoteFinalizedBody = `{{define "body"}}
<p>Se envió el presupuesto <strong>{{.Number}}</strong> al cliente <strong>+{{.ConversationID}}</strong>.</p>
<table style="width:100%;border-collapse:collapse;font-size:14px">
<tr><td>Renglones</td><td style="text-align:right">{{.Lines}}</td></tr>
<tr><td>Total lista</td><td style="text-align:right">{{.List}}</td></tr>
<tr><td>Total transferencia</td><td style="text-align:right">{{.Transfer}}</td></tr>
<tr><td><strong>Total efectivo</strong></td><td style="text-align:right"><strong>{{.Cash}}</strong></td></tr>
<tr><td>Válido hasta</td><td style="text-align:right">{{.ValidUntil.Format "02/01/2006"}}</td></tr>
</table>
{{if .NotFound}}<p>Sin cotizar:</p><ul>{{range .NotFound}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .DownloadURL}}<p><a href="{{.DownloadURL}}">Descargar PDF</a></p>{{end}}
{{end}}`

const handoffBody = `{{define "body"}}
<p>El cliente <strong>+{{.ConversationID}}</strong> necesita un asesor ({{.Reason}}).</p>
{{if .LastMessage}}<p>Último mensaje:</p><blockquote style="border-left:3px solid #e5e7eb;margin:0;padding-left:12px">{{.LastMessage}}</blockquote>{{end}}
<p><a href="https://wa.me/{{.ConversationID}}">Abrir chat</a></p>
{{end}}`

var templates = map[string]*template.Template{
	"quote_finalized": template.Must(template.Must(template.New("layout").Parse(layout)).Parse(quoteFinalizedBody)),
	"handoff":         template.Must(template.Must(template.New("layout").Parse(layout)).Parse(handoffBody)),
}

type baseEmailData struct {
	Title string
}

type quoteFinalizedEmailData struct {
	baseEmailData
	QuoteFinalizedMail
}

type handoffEmailData struct {
	baseEmailData
	HandoffMail
}

func renderEmailTemplate(name string, data any) (string, error) {
	tmpl, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
