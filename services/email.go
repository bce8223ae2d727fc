package services

import (
	"fmt"
	"log"

	"asset_manager_go/config"
	"asset_manager_go/models"

	"github.com/resend/resend-go/v2"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// SendEmail sends an email via Resend. In test mode (or without an API
// key) the message is logged instead of sent.
func SendEmail(cfg *config.Config, email *Email) error {
	if cfg.EmailTestMode || cfg.ResendAPIKey == "" {
		log.Printf("[EMAIL TEST MODE] To: %v | Subject: %s\n%s", email.To, email.Subject, email.TextBody)
		return nil
	}

	client := resend.NewClient(cfg.ResendAPIKey)
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}

	if _, err := client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendAssetCreatedEmail notifies the organization that an asset was
// registered and tagged. Best-effort: callers log failures and move on.
func SendAssetCreatedEmail(cfg *config.Config, org *models.Organization, asset *models.Asset) error {
	if org.NotificationEmail == "" {
		return nil
	}

	tag := derefOrEmpty(asset.AssetTag)
	if tag == "" {
		tag = asset.ID
	}

	text := fmt.Sprintf("A new asset was registered.\n\nTag: %s\nName: %s\nStatus: %s", tag, asset.Name, asset.Status)
	html := fmt.Sprintf("<p>A new asset was registered.</p><ul><li><strong>Tag:</strong> %s</li><li><strong>Name:</strong> %s</li><li><strong>Status:</strong> %s</li></ul>",
		tag, strictPolicy.Sanitize(asset.Name), asset.Status)

	return SendEmail(cfg, &Email{
		To:       []string{org.NotificationEmail},
		Subject:  fmt.Sprintf("Asset %s registered", tag),
		HTMLBody: html,
		TextBody: text,
	})
}
