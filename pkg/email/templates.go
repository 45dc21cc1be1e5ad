package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// TemplateManager holds the parsed email templates.
type TemplateManager struct {
	WelcomeTmpl           *template.Template
	OrderConfirmationTmpl *template.Template
}

// NewTemplateManager parses all email templates at startup.
func NewTemplateManager() (*TemplateManager, error) {
	welcomeTmpl, err := template.New("welcome").Parse(welcomeTemplate)
	if err != nil {
		return nil, err
	}

	orderTmpl, err := template.New("orderConfirmation").Parse(orderConfirmationTemplate)
	if err != nil {
		return nil, err
	}

	return &TemplateManager{
		WelcomeTmpl:           welcomeTmpl,
		OrderConfirmationTmpl: orderTmpl,
	}, nil
}

// TemplateData holds the dynamic data for the welcome template.
type TemplateData struct {
	Name string
}

// OrderLine is one row of the order confirmation table.
type OrderLine struct {
	Title    string
	Quantity int
	Total    string
	PreOrder string
}

// OrderEmailData holds the dynamic data for an order confirmation.
type OrderEmailData struct {
	Name        string
	Reference   string
	Address     string
	Lines       []OrderLine
	Subtotal    string
	DeliveryFee string
	HandlingFee string
	Total       string
}

// GenerateWelcomeEmailHTML executes the welcome template.
func (tm *TemplateManager) GenerateWelcomeEmailHTML(data TemplateData) (string, error) {
	var body bytes.Buffer
	if err := tm.WelcomeTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// GenerateOrderConfirmationHTML executes the order confirmation template.
func (tm *TemplateManager) GenerateOrderConfirmationHTML(data OrderEmailData) (string, error) {
	var body bytes.Buffer
	if err := tm.OrderConfirmationTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// OrderConfirmationText is the plain text alternative of the confirmation email.
func OrderConfirmationText(data OrderEmailData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nYour order %s has been placed.\n\n", data.Name, data.Reference)
	for _, l := range data.Lines {
		fmt.Fprintf(&b, "%d x %s  KES %s\n", l.Quantity, l.Title, l.Total)
		if l.PreOrder != "" {
			fmt.Fprintf(&b, "    %s\n", l.PreOrder)
		}
	}
	fmt.Fprintf(&b, "\nSubtotal: KES %s\nDelivery: KES %s\nHandling: KES %s\nTotal: KES %s\n",
		data.Subtotal, data.DeliveryFee, data.HandlingFee, data.Total)
	if data.Address != "" {
		fmt.Fprintf(&b, "\nDelivering to: %s\n", data.Address)
	}
	return b.String()
}

// --- HTML Template Definitions ---

const welcomeTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>Welcome</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<h2>Karibu, {{.Name}}!</h2>
	<p>Your account is ready. Browse the menu, fill your cart and we will bring it to your door.</p>
</body>
</html>
`

const orderConfirmationTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>Order {{.Reference}}</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<h2>Thanks for your order, {{.Name}}!</h2>
	<p>Reference: <strong>{{.Reference}}</strong></p>
	<table cellpadding="4">
		{{range .Lines}}
		<tr>
			<td>{{.Quantity}} x {{.Title}}{{if .PreOrder}}<br><small>{{.PreOrder}}</small>{{end}}</td>
			<td align="right">KES {{.Total}}</td>
		</tr>
		{{end}}
		<tr><td>Subtotal</td><td align="right">KES {{.Subtotal}}</td></tr>
		<tr><td>Delivery</td><td align="right">KES {{.DeliveryFee}}</td></tr>
		<tr><td>Handling</td><td align="right">KES {{.HandlingFee}}</td></tr>
		<tr><td><strong>Total</strong></td><td align="right"><strong>KES {{.Total}}</strong></td></tr>
	</table>
	{{if .Address}}<p>Delivering to: {{.Address}}</p>{{end}}
</body>
</html>
`
