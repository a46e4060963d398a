package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const layout = `<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background-color: #16a34a; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
.content { background-color: #f9fafb; padding: 30px; border: 1px solid #e5e7eb; }
.button { display: inline-block; background-color: #16a34a; color: white; padding: 12px 30px; text-decoration: none; border-radius: 6px; margin: 20px 0; }
.box { background-color: white; padding: 15px; margin: 15px 0; border-radius: 6px; border-left: 4px solid #16a34a; }
.footer { text-align: center; padding: 20px; color: #6b7280; font-size: 14px; }
table { width: 100%; border-collapse: collapse; }
td, th { padding: 6px; border-bottom: 1px solid #e5e7eb; text-align: left; }
</style>
</head>
<body>
<div class="container">
<div class="header"><h1>{{template "title" .}}</h1></div>
<div class="content">{{template "body" .}}</div>
<div class="footer"><p>This is an automated email from FarmerFriend.</p><p>&copy; {{.Year}} FarmerFriend. All rights reserved.</p></div>
</div>
</body>
</html>`

var bodies = map[Kind]string{
	KindPasswordReset: `{{define "title"}}Password Reset Request{{end}}
{{define "body"}}
<p>Dear {{.Name}},</p>
<p>We received a request to reset your password for your FarmerFriend account.</p>
<p><a href="{{.ResetLink}}" class="button">Reset Password</a></p>
<p>Or copy and paste this link into your browser:</p>
<p style="word-break: break-all;">{{.ResetLink}}</p>
<div class="box"><ul>
<li>This link will expire in 1 hour</li>
<li>If you didn't request this, please ignore this email</li>
<li>Your password won't change until you create a new one</li>
</ul></div>
<p>Best regards,<br>The FarmerFriend Team</p>
{{end}}`,

	KindOrderApproved: `{{define "title"}}Your Order Has Been Approved{{end}}
{{define "body"}}
<p>Dear {{.Name}},</p>
<p>Good news! The farmer has approved your order <strong>#{{.Order.ID}}</strong> and is preparing it for delivery.</p>
<p>We will let you know once it has been delivered.</p>
<p>Best regards,<br>The FarmerFriend Team</p>
{{end}}`,

	KindOrderDelivered: `{{define "title"}}Your Order Has Been Delivered{{end}}
{{define "body"}}
<p>Dear {{.Name}},</p>
<p>Your order <strong>#{{.Order.ID}}</strong> has been delivered.</p>
<table>
<tr><th>Product</th><th>Quantity</th><th>Price</th></tr>
{{range .Order.Items}}<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>&#8377;{{printf "%.2f" .Price}}</td></tr>
{{end}}</table>
<p><strong>Total: &#8377;{{printf "%.2f" .Order.Total}}</strong></p>
<p>Thank you for supporting local farmers!</p>
{{end}}`,

	KindContact: `{{define "title"}}New Contact Form Message{{end}}
{{define "body"}}
<p><strong>You have received a new message from the FarmerFriend contact form.</strong></p>
<div class="box">
<p><strong>From:</strong> {{.Contact.Name}}</p>
<p><strong>Email:</strong> {{.Contact.Email}}</p>
<p><strong>Subject:</strong> {{.Contact.Subject}}</p>
<p><strong>Date:</strong> {{.Date}}</p>
</div>
<div class="box"><h3>Message:</h3><p style="white-space: pre-wrap;">{{.Contact.Body}}</p></div>
<p>You can reply directly to this email to respond to {{.Contact.Name}}.</p>
{{end}}`,
}

var templates = func() map[Kind]*template.Template {
	out := make(map[Kind]*template.Template, len(bodies))
	for kind, body := range bodies {
		t := template.Must(template.New("layout").Parse(layout))
		out[kind] = template.Must(t.Parse(body))
	}
	return out
}()

type view struct {
	Message
	Year int
	Date string
}

// Render returns the subject line and HTML body for m.
func Render(m Message, now time.Time) (string, string, error) {
	t, ok := templates[m.Kind]
	if !ok {
		return "", "", fmt.Errorf("unknown notification kind %q", m.Kind)
	}
	if (m.Kind == KindOrderApproved || m.Kind == KindOrderDelivered) && m.Order == nil {
		return "", "", fmt.Errorf("%s notification without order", m.Kind)
	}
	if m.Kind == KindContact && m.Contact == nil {
		return "", "", fmt.Errorf("contact notification without form")
	}

	var buf bytes.Buffer
	v := view{Message: m, Year: now.Year(), Date: now.Format("02 Jan 2006 15:04 MST")}
	if err := t.Execute(&buf, v); err != nil {
		return "", "", fmt.Errorf("rendering %s: %w", m.Kind, err)
	}
	return subject(m), buf.String(), nil
}

func subject(m Message) string {
	switch m.Kind {
	case KindPasswordReset:
		return "Password Reset Request - FarmerFriend"
	case KindOrderApproved:
		return "Your FarmerFriend order has been approved"
	case KindOrderDelivered:
		return "Your FarmerFriend order has been delivered"
	case KindContact:
		return "Contact Form: " + m.Contact.Subject
	}
	return "FarmerFriend"
}
