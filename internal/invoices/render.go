package invoices

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/elarose/storefront/pkg/db/models"
)

// Number is INV-<placed date>-<first 8 hex digits of the order id>.
func Number(order models.Order) string {
	id := strings.ReplaceAll(order.ID.String(), "-", "")
	return fmt.Sprintf("INV-%s-%s", order.CreatedAt.UTC().Format("20060102"), strings.ToUpper(id[:8]))
}

var invoiceTemplate = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.UTC().Format("January 2, 2006") },
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Invoice {{.Number}}</title>
<style>
body { font-family: Georgia, serif; color: #2b2b2b; margin: 40px; }
table { width: 100%; border-collapse: collapse; margin-top: 24px; }
th, td { padding: 8px; border-bottom: 1px solid #e6dcd5; text-align: left; }
td.num, th.num { text-align: right; }
.totals td { border: none; }
</style>
</head>
<body>
<h1>ElaRose</h1>
<p><strong>Invoice {{.Number}}</strong><br>Date: {{date .Order.CreatedAt}}<br>Order: {{.Order.ID}}</p>
<p><strong>Bill to</strong><br>
{{.Order.FullName}}<br>
{{.Order.Address}}<br>
{{.Order.City}} {{.Order.PostalCode}}<br>
{{.Order.Country}}<br>
{{.Order.Email}} / {{.Order.Phone}}</p>
<table>
<thead><tr><th>Item</th><th>Variant</th><th class="num">Unit price</th><th class="num">Qty</th><th class="num">Line total</th></tr></thead>
<tbody>
{{- range .Order.Items}}
<tr><td>{{.ProductName}}</td><td>{{.Size}}{{if and .Size .Color}} / {{end}}{{.Color}}</td><td class="num">{{.UnitPrice.StringFixed 2}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.LineTotal.StringFixed 2}}</td></tr>
{{- end}}
</tbody>
</table>
<table class="totals">
<tr><td class="num">Subtotal</td><td class="num">{{.Order.Subtotal.StringFixed 2}} {{.Order.Currency}}</td></tr>
<tr><td class="num">Tax</td><td class="num">{{.Order.Tax.StringFixed 2}} {{.Order.Currency}}</td></tr>
<tr><td class="num">Shipping</td><td class="num">{{.Order.ShippingFee.StringFixed 2}} {{.Order.Currency}}</td></tr>
{{- if .Order.DiscountCode}}
<tr><td class="num">Discount ({{deref .Order.DiscountCode}})</td><td class="num">-{{.Order.DiscountAmount.StringFixed 2}} {{.Order.Currency}}</td></tr>
{{- end}}
<tr><td class="num"><strong>Total</strong></td><td class="num"><strong>{{.Order.Total.StringFixed 2}} {{.Order.Currency}}</strong></td></tr>
</table>
<p>Payment method: cash on delivery.</p>
</body>
</html>
`))

type invoiceView struct {
	Number string
	Order  models.Order
}

// Render produces the invoice document for order.
func Render(order models.Order) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, invoiceView{Number: Number(order), Order: order}); err != nil {
		return "", fmt.Errorf("render invoice: %w", err)
	}
	return buf.String(), nil
}
