package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

// QuoteEmailData feeds the quote email sent when a quote goes out
type QuoteEmailData struct {
	CustomerName      string
	InstallAddress    string
	TotalLengthFt     float64
	DeliveryFee       float64
	InstallFee        float64
	MonthlyRentalRate float64
	TotalUpfront      float64
	AcceptanceURL     string
}

// AcceptanceEmailData feeds the follow-up email sent after acceptance
type AcceptanceEmailData struct {
	CustomerName string
	PaymentURL   string
	SignatureURL string
	TotalUpfront float64
}

var quoteTemplate = template.Must(template.New("quote").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto;">
  <h2>Your Wheelchair Ramp Rental Quote</h2>
  <p>Hi {{.CustomerName}},</p>
  <p>Thank you for your interest in renting a wheelchair ramp. Here is your quote
  for the installation at <strong>{{.InstallAddress}}</strong>:</p>
  <table style="width: 100%; border-collapse: collapse;">
    <tr><td style="padding: 8px; border-bottom: 1px solid #ddd;">Ramp length</td><td style="padding: 8px; border-bottom: 1px solid #ddd; text-align: right;">{{printf "%.0f" .TotalLengthFt}} ft</td></tr>
    <tr><td style="padding: 8px; border-bottom: 1px solid #ddd;">Delivery fee</td><td style="padding: 8px; border-bottom: 1px solid #ddd; text-align: right;">${{printf "%.2f" .DeliveryFee}}</td></tr>
    <tr><td style="padding: 8px; border-bottom: 1px solid #ddd;">Installation fee</td><td style="padding: 8px; border-bottom: 1px solid #ddd; text-align: right;">${{printf "%.2f" .InstallFee}}</td></tr>
    <tr><td style="padding: 8px; border-bottom: 1px solid #ddd;">Monthly rental</td><td style="padding: 8px; border-bottom: 1px solid #ddd; text-align: right;">${{printf "%.2f" .MonthlyRentalRate}}/month</td></tr>
    <tr><td style="padding: 8px; font-weight: bold;">Due upfront</td><td style="padding: 8px; text-align: right; font-weight: bold;">${{printf "%.2f" .TotalUpfront}}</td></tr>
  </table>
  <p style="margin: 24px 0;">
    <a href="{{.AcceptanceURL}}" style="background: #2563eb; color: #fff; padding: 12px 24px; text-decoration: none; border-radius: 6px;">Accept This Quote</a>
  </p>
  <p style="color: #666; font-size: 13px;">This link is valid for 24 hours. If it
  expires, reply to this email and we will send a fresh one.</p>
</body>
</html>`))

var acceptanceTemplate = template.Must(template.New("acceptance").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto;">
  <h2>Next Steps for Your Ramp Rental</h2>
  <p>Hi {{.CustomerName}},</p>
  <p>Thanks for accepting your quote. Two quick steps remain before we schedule
  your installation:</p>
  <p style="margin: 24px 0;">
    <a href="{{.PaymentURL}}" style="background: #16a34a; color: #fff; padding: 12px 24px; text-decoration: none; border-radius: 6px;">Pay ${{printf "%.2f" .TotalUpfront}} Upfront</a>
  </p>
  <p style="margin: 24px 0;">
    <a href="{{.SignatureURL}}" style="background: #2563eb; color: #fff; padding: 12px 24px; text-decoration: none; border-radius: 6px;">Sign the Rental Agreement</a>
  </p>
  <p style="color: #666; font-size: 13px;">Once both are complete we will reach
  out to schedule your installation.</p>
</body>
</html>`))

// RenderQuoteEmail renders the subject and HTML body for the quote email
func RenderQuoteEmail(data QuoteEmailData) (subject, html string, err error) {
	var buf bytes.Buffer
	if err := quoteTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("rendering quote email: %w", err)
	}
	return "Your Wheelchair Ramp Rental Quote", buf.String(), nil
}

// RenderAcceptanceEmail renders the subject and HTML body for the follow-up
// email with payment and signature links
func RenderAcceptanceEmail(data AcceptanceEmailData) (subject, html string, err error) {
	var buf bytes.Buffer
	if err := acceptanceTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("rendering acceptance email: %w", err)
	}
	return "Next Steps for Your Ramp Rental", buf.String(), nil
}
