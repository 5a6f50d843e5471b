package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"

	"github.com/mstgnz/eventpay/infra/store"
)

// Data is what a confirmation template needs
type Data struct {
	PaymentID    string
	Registration *store.Registration
	// AppURL is the public site root, without trailing slash
	AppURL string
}

// VerifyURL links to the registration confirmation page
func (d Data) VerifyURL() string {
	return d.AppURL + "/verify?payment_id=" + url.QueryEscape(d.PaymentID)
}

// PhoneOrDefault returns the phone or "Not provided"
func (d Data) PhoneOrDefault() string {
	if d.Registration.Phone == "" {
		return "Not provided"
	}
	return d.Registration.Phone
}

// Template renders a confirmation email for one registration type
type Template interface {
	Render(d Data) (Message, error)
}

// PassTemplate confirms a single-item pass purchase
type PassTemplate struct{}

// EventTemplate confirms an event registration and lists participants
type EventTemplate struct{}

// TemplateFor selects the template for a registration type. Unknown
// types get the pass layout.
func TemplateFor(t store.RegistrationType) Template {
	switch t {
	case store.TypeEvent:
		return EventTemplate{}
	case store.TypePass:
		return PassTemplate{}
	default:
		return PassTemplate{}
	}
}

func (PassTemplate) Render(d Data) (Message, error) {
	return render(passHTML, d)
}

func (EventTemplate) Render(d Data) (Message, error) {
	return render(eventHTML, d)
}

func render(tmpl *template.Template, d Data) (Message, error) {
	if d.Registration == nil {
		return Message{}, fmt.Errorf("mail: render %s: registration is nil", tmpl.Name())
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d); err != nil {
		return Message{}, fmt.Errorf("mail: render %s: %w", tmpl.Name(), err)
	}

	r := d.Registration
	return Message{
		To:      r.Email,
		Subject: "Payment Confirmation: " + d.PaymentID,
		Text:    fmt.Sprintf("Your payment of ₹%s has been successfully processed for %s.", r.Amount.String(), r.ClassID),
		HTML:    buf.String(),
	}, nil
}

const layoutHead = `<div style="max-width: 600px; margin: 20px auto; background-color: #ffffff; border: 1px solid #e0e0e0; border-radius: 8px; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; color: #2c2c2c; padding: 24px;">
  <h1 style="color: #5a3e2b; font-size: 28px; margin-bottom: 16px;">Payment Confirmation</h1>
  <p style="font-size: 16px; margin-bottom: 12px;">Dear <strong style="color: #3c2f1c;">{{.Registration.Name}}</strong>,</p>
  <p style="font-size: 16px; margin-bottom: 20px;">
    Your payment of <strong style="color: #5a3e2b;">₹{{.Registration.Amount.String}}</strong> has been successfully processed for
    <strong style="color: #5a3e2b;">{{.Registration.ClassID}}</strong>.
  </p>
  <ul style="list-style: none; padding: 0; font-size: 15px; margin-bottom: 20px;">
    <li style="margin-bottom: 8px;"><strong style="color: #4b3621;">Name:</strong> {{.Registration.Name}}</li>
    <li style="margin-bottom: 8px;"><strong style="color: #4b3621;">Email:</strong> {{.Registration.Email}}</li>
    <li style="margin-bottom: 8px;"><strong style="color: #4b3621;">Phone:</strong> {{.PhoneOrDefault}}</li>
    <li style="margin-bottom: 8px;"><strong style="color: #4b3621;">Payment ID:</strong> {{.PaymentID}}</li>
    <li style="margin-bottom: 8px;"><strong style="color: #4b3621;">Order ID:</strong> {{.Registration.OrderID}}</li>
  </ul>
`

const participantsBlock = `  <p style="font-size: 16px; margin-bottom: 12px;"><strong style="color: #4b3621;">Participants:</strong></p>
  <ul style="list-style: none; padding: 0; font-size: 15px; margin-bottom: 20px;">
    {{- range .Registration.Participants}}
    <li style="margin-bottom: 8px;">{{.Name}}</li>
    {{- end}}
  </ul>
`

const layoutFoot = `  <p style="font-size: 16px; margin-bottom: 24px;">Thank you for your registration. We're excited to have you on board.</p>
  <p style="font-size: 16px;">You can verify your registration by clicking the button below:</p>
  <div style="margin-top: 16px;">
    <a href="{{.VerifyURL}}" style="display: inline-block; padding: 12px 24px; background-color: #5a3e2b; color: #ffffff; text-decoration: none; border-radius: 6px; font-size: 16px;">Verify Registration</a>
  </div>
  <p style="font-size: 14px; color: #777777; margin-top: 32px;">If you have any questions or need support, feel free to reply to this email.</p>
</div>`

var (
	passHTML  = template.Must(template.New("pass").Parse(layoutHead + layoutFoot))
	eventHTML = template.Must(template.New("event").Parse(layoutHead + participantsBlock + layoutFoot))
)
