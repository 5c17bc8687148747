package notification

import (
	htmltemplate "html/template"
	"text/template"
)

type emailTemplate struct {
	subject *template.Template
	text    *template.Template
	html    *htmltemplate.Template
}

func newEmailTemplate(name, subject, text, html string) emailTemplate {
	funcs := template.FuncMap{"amount": formatAmount, "configuration": formatConfiguration}
	return emailTemplate{
		subject: template.Must(template.New(name + ".subject").Parse(subject)),
		text:    template.Must(template.New(name + ".txt").Funcs(funcs).Parse(text)),
		html:    htmltemplate.Must(htmltemplate.New(name + ".html").Funcs(htmltemplate.FuncMap(funcs)).Parse(html)),
	}
}

const linesText = `{{range .Order.Items}}- {{.ProductName}} x{{.Quantity}}: {{amount .LineTotal $.Order.Currency}} {{$.Order.Currency}}
{{end}}`

const linesHTML = `<table>{{range .Order.Items}}<tr><td>{{.ProductName}}</td><td>x{{.Quantity}}</td><td>{{amount .LineTotal $.Order.Currency}} {{$.Order.Currency}}</td></tr>{{end}}</table>`

var customerConfirmation = map[string]emailTemplate{
	"he": newEmailTemplate("confirmation-he",
		`אישור הזמנה {{.ShortID}} - {{.Shop}}`,
		`שלום {{.Order.Customer.Name}},

תודה על ההזמנה! מספר הזמנה: {{.Order.ID}}

`+linesText+`
סה"כ לתשלום: {{amount .Order.TotalAmount .Order.Currency}} {{.Order.Currency}}

{{.Shop}}
`,
		`<div dir="rtl"><p>שלום {{.Order.Customer.Name}},</p><p>תודה על ההזמנה! מספר הזמנה: <b>{{.Order.ID}}</b></p>`+linesHTML+
			`<p>סה"כ לתשלום: <b>{{amount .Order.TotalAmount .Order.Currency}} {{.Order.Currency}}</b></p><p>{{.Shop}}</p></div>`,
	),
	"en": newEmailTemplate("confirmation-en",
		`Order confirmation {{.ShortID}} - {{.Shop}}`,
		`Hello {{.Order.Customer.Name}},

Thank you for your order! Order number: {{.Order.ID}}

`+linesText+`
Total due: {{amount .Order.TotalAmount .Order.Currency}} {{.Order.Currency}}

{{.Shop}}
`,
		`<p>Hello {{.Order.Customer.Name}},</p><p>Thank you for your order! Order number: <b>{{.Order.ID}}</b></p>`+linesHTML+
			`<p>Total due: <b>{{amount .Order.TotalAmount .Order.Currency}} {{.Order.Currency}}</b></p><p>{{.Shop}}</p>`,
	),
}

var paymentReceived = map[string]emailTemplate{
	"he": newEmailTemplate("paid-he",
		`התשלום התקבל - הזמנה {{.ShortID}}`,
		`שלום {{.Order.Customer.Name}},

קיבלנו את התשלום עבור הזמנה {{.Order.ID}} ({{amount .Order.TotalAmount .Order.Currency}} {{.Order.Currency}}). ההזמנה עוברת לייצור.

{{.Shop}}
`,
		`<div dir="rtl"><p>שלום {{.Order.Customer.Name}},</p><p>קיבלנו את התשלום עבור הזמנה <b>{{.Order.ID}}</b> ({{amount .Order.TotalAmount .Order.Currency}} {{.Order.Currency}}). ההזמנה עוברת לייצור.</p><p>{{.Shop}}</p></div>`,
	),
	"en": newEmailTemplate("paid-en",
		`Payment received - order {{.ShortID}}`,
		`Hello {{.Order.Customer.Name}},

We received your payment for order {{.Order.ID}} ({{amount .Order.TotalAmount .Order.Currency}} {{.Order.Currency}}). Your kit is going into production.

{{.Shop}}
`,
		`<p>Hello {{.Order.Customer.Name}},</p><p>We received your payment for order <b>{{.Order.ID}}</b> ({{amount .Order.TotalAmount .Order.Currency}} {{.Order.Currency}}). Your kit is going into production.</p><p>{{.Shop}}</p>`,
	),
}

var shopNewOrder = newEmailTemplate("shop-new-order",
	`New order {{.ShortID}}: {{amount .Order.TotalAmount .Order.Currency}} {{.Order.Currency}}`,
	`New order {{.Order.ID}}

Customer: {{.Order.Customer.Name}}
Email: {{.Order.Customer.Email}}
Phone: {{.Order.Customer.Phone}}
Address: {{.Order.Customer.Address}}, {{.Order.Customer.City}}
{{if .Order.Customer.Notes}}Notes: {{.Order.Customer.Notes}}
{{end}}
{{range .Order.Items}}- {{.ProductName}} x{{.Quantity}} [{{configuration .}}]: {{amount .LineTotal $.Order.Currency}}
{{end}}
Total: {{amount .Order.TotalAmount .Order.Currency}} {{.Order.Currency}}
`,
	`<h3>New order {{.Order.ID}}</h3><p>{{.Order.Customer.Name}}<br>{{.Order.Customer.Email}}<br>{{.Order.Customer.Phone}}<br>{{.Order.Customer.Address}}, {{.Order.Customer.City}}</p>{{if .Order.Customer.Notes}}<p>Notes: {{.Order.Customer.Notes}}</p>{{end}}`+
		`<table>{{range .Order.Items}}<tr><td>{{.ProductName}}</td><td>x{{.Quantity}}</td><td>{{configuration .}}</td><td>{{amount .LineTotal $.Order.Currency}}</td></tr>{{end}}</table>`+
		`<p>Total: <b>{{amount .Order.TotalAmount .Order.Currency}} {{.Order.Currency}}</b></p>`,
)
