package service

import (
	"bytes"
	"html/template"
)

const emailLayout = `{{define "layout"}}<!doctype html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body style="margin:0;padding:0;background-color:#f4f4f4;font-family:Arial,sans-serif;">
<table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color:#f4f4f4;padding:20px 0;">
<tr><td align="center">
<table role="presentation" width="600" cellspacing="0" cellpadding="0" style="background-color:#ffffff;border-radius:8px;overflow:hidden;">
<tr><td align="center" style="background-color:{{.Accent}};padding:16px 24px;">
<span style="color:#ffffff;font-size:20px;font-weight:bold;">{{.Banner}}</span></td></tr>
<tr><td style="padding:24px 28px 8px 28px;">
<h1 style="margin:0;font-size:20px;color:#333333;">{{.Heading}}</h1>
<p style="margin:8px 0 0 0;font-size:14px;color:#666666;line-height:1.6;">{{.Intro}}</p></td></tr>
<tr><td style="padding:12px 28px 0 28px;"><p style="margin:0;font-size:14px;color:#333333;">
{{block "details" .}}{{end}}
</p></td></tr>
<tr><td align="center" style="padding:14px 24px 18px 24px;background-color:#fafafa;border-top:1px solid #eeeeee;">
<p style="margin:0;font-size:11px;color:#aaaaaa;">&copy; {{.Year}} Inventory System. This is an automated message, please do not reply.</p>
</td></tr></table></td></tr></table></body></html>{{end}}`

const orderPlacedDetails = `{{define "details"}}<strong>Product:</strong> {{.Data.Name}}<br/>
<strong>Model:</strong> {{.Data.Model}}<br/>
<strong>Quantity ordered:</strong> {{.Data.Ordered}}<br/>
<strong>Remaining units:</strong> {{.Data.Remaining}}<br/>
<strong>Customer:</strong> {{.Data.CustomerName}}<br/>
<strong>Address:</strong> {{.Data.CustomerAddress}}<br/>
<strong>Product ID:</strong> {{.Data.ProductID}}{{end}}`

const lowStockDetails = `{{define "details"}}<strong>Product:</strong> {{.Data.Name}}<br/>
<strong>Model:</strong> {{.Data.Model}}<br/>
<strong>Current stock:</strong> {{.Data.Remaining}}<br/>
<strong>Product ID:</strong> {{.Data.ProductID}}<br/>
Please restock soon to avoid stock-out.{{end}}`

var (
	orderPlacedTmpl = template.Must(template.Must(template.New("order").Parse(emailLayout)).Parse(orderPlacedDetails))
	lowStockTmpl    = template.Must(template.Must(template.New("lowstock").Parse(emailLayout)).Parse(lowStockDetails))
)

type emailView struct {
	Title   string
	Banner  string
	Accent  string
	Heading string
	Intro   string
	Year    int
	Data    any
}

func renderEmail(t *template.Template, view emailView) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
