package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender   `json:"sender"`
	To          []BrevoTo     `json:"to"`
	Subject     string        `json:"subject"`
	HTMLContent string        `json:"htmlContent"`
	ReplyTo     *BrevoReplyTo `json:"replyTo,omitempty"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type BrevoReplyTo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Sender sends transactional emails. An empty API key makes every call a no-op.
type Sender interface {
	SendWelcome(ctx context.Context, toEmail, name, role string) error
	SendPurchaseReceipt(ctx context.Context, toEmail, name string, r PurchaseReceipt) error
}

// BrevoClient sends emails via Brevo (Sendinblue) API. Env: SENDINBLUE_API_KEY, MAIL_FROM.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Endpoint string // defaults to the Brevo v3 SMTP endpoint
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@tidechain.org"
}

func (c *BrevoClient) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return brevoAPI
}

// send sends one email via Brevo API.
func (c *BrevoClient) send(ctx context.Context, toEmail, toName, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "TideChain"},
		To:          []BrevoTo{{Email: toEmail, Name: toName}},
		Subject:     subject,
		HTMLContent: html,
		ReplyTo:     &BrevoReplyTo{Email: "support@tidechain.org", Name: "TideChain Support"},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

// SendWelcome sends the welcome email after registration.
func (c *BrevoClient) SendWelcome(ctx context.Context, toEmail, name, role string) error {
	if c.APIKey == "" {
		return nil
	}
	if name == "" {
		name = "there"
	}
	return c.send(ctx, toEmail, name, "Welcome to TideChain!", EmailLayout(welcomeContent(name, role)))
}

// SendPurchaseReceipt confirms an issued purchase and links the certificate.
func (c *BrevoClient) SendPurchaseReceipt(ctx context.Context, toEmail, name string, r PurchaseReceipt) error {
	if c.APIKey == "" {
		return nil
	}
	subject := fmt.Sprintf("Your TideChain certificate %s", r.CertificateID)
	return c.send(ctx, toEmail, name, subject, EmailLayout(receiptContent(name, r)))
}

// welcomeContent is the registration email body (inside layout).
func welcomeContent(name, role string) string {
	next := "Browse verified blue carbon projects and offset your footprint with credits backed by real coastal restoration."
	if role == "ngo" {
		next = "Register your restoration project from your dashboard. Once an administrator verifies it, buyers can purchase credits against it."
	}
	return fmt.Sprintf(`
    <h1>Welcome to TideChain, %s!</h1>
    <p>Your account has been created. You are now part of a network restoring mangroves, seagrass meadows and salt marshes.</p>
    <p>%s</p>
    <p style="margin-top: 20px; font-size: 14px; color: #666;">
      If you did not sign up for this account, please contact our support team immediately.
    </p>
    <p>The TideChain Team</p>
`, EscapeHTML(name), next)
}

// receiptContent is the purchase receipt body (inside layout).
func receiptContent(name string, r PurchaseReceipt) string {
	return fmt.Sprintf(`
    <h1>Thank you for your purchase, %s</h1>
    <p>Your blue carbon credits have been issued.</p>
    <h2>Receipt</h2>
    <p>
      Certificate ID: <strong>%s</strong><br>
      Project: <strong>%s</strong><br>
      Credits: <strong>%s tons CO&#8322;</strong><br>
      Price per credit: <strong>%s</strong><br>
      Total: <strong>%s</strong>
    </p>
    <center>
      <a href="%s" class="tide-button">View Certificate</a>
    </center>
    <p>The TideChain Team</p>
`, EscapeHTML(name), EscapeHTML(r.CertificateID), EscapeHTML(r.ProjectName),
		formatAmount(r.Credits), formatAmount(r.PricePerCredit), formatAmount(r.TotalAmount), r.CertificateURL)
}
