package email

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/alvbalcab/PetJoy/internal/domain"
)

// CompanyInfo is the sender identity shown in confirmation messages.
type CompanyInfo struct {
	Name    string
	Email   string
	Phone   string
	Website string
}

const confirmationTemplate = `Hello {{.Order.FirstName}},

Thank you for your order at {{.Company.Name}}!

Order number: {{.Order.Number}}

Items:
{{range .Order.Items}}  - {{.ProductName}}{{if .Size}} (size {{.Size}}){{end}} x{{.Quantity}} ... {{money .Total}}
{{end}}
Subtotal: {{money .Order.Subtotal}}
Shipping: {{money .Order.Shipping}}
Tax:      {{money .Order.Tax}}
Total:    {{money .Order.Total}}

Shipping to:
{{.Order.FirstName}} {{.Order.LastName}}
{{.Order.Address}}
{{.Order.PostalCode}} {{.Order.City}}

Questions? Reach us at {{.Company.Email}}{{if .Company.Phone}} or {{.Company.Phone}}{{end}}.

{{.Company.Name}}{{if .Company.Website}} - {{.Company.Website}}{{end}}
`

var confirmationTmpl = template.Must(
	template.New("confirmation").
		Funcs(template.FuncMap{
			"money": func(d interface{ StringFixed(int32) string }) string {
				return d.StringFixed(2) + " EUR"
			},
		}).
		Parse(confirmationTemplate))

// RenderConfirmation builds the subject and plain-text body for an order
// confirmation message.
func RenderConfirmation(order *domain.Order, company CompanyInfo) (subject, body string, err error) {
	subject = fmt.Sprintf("Order confirmation #%s", order.Number)

	var b strings.Builder
	data := struct {
		Order   *domain.Order
		Company CompanyInfo
	}{order, company}

	if err := confirmationTmpl.Execute(&b, data); err != nil {
		return "", "", fmt.Errorf("render confirmation template: %w", err)
	}
	return subject, b.String(), nil
}
