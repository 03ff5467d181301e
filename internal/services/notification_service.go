package services

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/mhsenam/rentmio/internal/config"
	"github.com/mhsenam/rentmio/internal/utils"
)

// Notifier delivers outbound email and SMS. Implementations without a
// configured provider log and return nil.
type Notifier interface {
	SendEmail(ctx context.Context, toName, toEmail, subject, plainText, html string) error
	SendSMS(ctx context.Context, toPhone, body string) error
}

type notifier struct {
	cfg            *config.Config
	sendgridClient *sendgrid.Client
	twilioClient   *twilio.RestClient
}

func NewNotifier(cfg *config.Config) Notifier {
	n := &notifier{cfg: cfg}
	if cfg.SendGridAPIKey != "" {
		n.sendgridClient = sendgrid.NewSendClient(cfg.SendGridAPIKey)
	}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		n.twilioClient = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
	}
	return n
}

func (n *notifier) SendEmail(_ context.Context, toName, toEmail, subject, plainText, html string) error {
	if n.sendgridClient == nil {
		utils.Logger.WithField("to", toEmail).Warn("SendGrid client is nil, skipping email")
		return nil
	}

	from := mail.NewEmail(n.cfg.OrganizationName, n.cfg.LDFlag_SendgridFromEmail)
	to := mail.NewEmail(toName, toEmail)
	msg := mail.NewSingleEmail(from, subject, to, plainText, html)
	msg.TrackingSettings = &mail.TrackingSettings{
		ClickTracking: &mail.ClickTrackingSetting{
			Enable: utils.Ptr(false),
		},
	}
	if n.cfg.LDFlag_SendgridSandboxMode {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}

	resp, err := n.sendgridClient.Send(msg)
	if err != nil {
		return fmt.Errorf("%w: sendgrid send: %v", utils.ErrExternalServiceFailure, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: sendgrid status %d: %s", utils.ErrExternalServiceFailure, resp.StatusCode, resp.Body)
	}
	return nil
}

func (n *notifier) SendSMS(_ context.Context, toPhone, body string) error {
	if n.twilioClient == nil || n.cfg.LDFlag_TwilioFromPhone == "" {
		utils.Logger.WithField("to", toPhone).Warn("Twilio client is nil, skipping SMS")
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(toPhone)
	params.SetFrom(n.cfg.LDFlag_TwilioFromPhone)
	params.SetBody(body)

	if _, err := n.twilioClient.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("%w: failed to send sms via twilio: %v", utils.ErrExternalServiceFailure, err)
	}
	return nil
}
