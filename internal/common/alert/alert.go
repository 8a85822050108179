// Package alert delivers out-of-band notifications for critical failures.
// Delivery is best effort: a broken channel is logged and dropped, never
// surfaced to the request that triggered it.
package alert

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"postforge/internal/common/aws"
	"postforge/internal/common/config"
	"postforge/internal/common/errors"
	"postforge/internal/common/logger"
)

// Notifier fans one critical error record out to the configured channels.
// Implements the error handler's Alerter interface.
type Notifier struct {
	cfg config.AlertingConfig
	log logger.Logger

	sesClient *aws.SESClient
	snsClient *aws.SNSClient
}

func New(ctx context.Context, cfg config.AlertingConfig, log logger.Logger) (*Notifier, error) {
	n := &Notifier{cfg: cfg, log: log}

	if cfg.AWS.SES.Enabled {
		client, err := aws.NewSESClient(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create ses client: %w", err)
		}
		n.sesClient = client
	}
	if cfg.AWS.SNS.Enabled {
		client, err := aws.NewSNSClient(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create sns client: %w", err)
		}
		n.snsClient = client
	}

	return n, nil
}

// NotifyCritical sends the record to every enabled channel. Each channel
// fails independently; one broken channel does not stop the others.
func (n *Notifier) NotifyCritical(ctx context.Context, rec *errors.LogRecord) {
	subject := fmt.Sprintf("[CRITICAL] %s (%s)", rec.Kind, rec.ErrorID)
	body := fmt.Sprintf(
		"Error ID: %s\nKind: %s\nCategory: %s\nEndpoint: %s %s\nTime: %s\n\n%s",
		rec.ErrorID, rec.Kind, rec.Category, rec.Method, rec.Endpoint,
		rec.CreatedAt.Format("2006-01-02 15:04:05 UTC"), rec.Message,
	)

	n.sendEmail(ctx, subject, body)
	n.publishSNS(ctx, subject, body)
}

func (n *Notifier) sendEmail(ctx context.Context, subject, body string) {
	if n.sesClient == nil || len(n.cfg.AWS.SES.ToEmails) == 0 {
		return
	}

	input := &ses.SendEmailInput{
		Source: awssdk.String(n.cfg.AWS.SES.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: n.cfg.AWS.SES.ToEmails,
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: awssdk.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: awssdk.String(body)},
			},
		},
	}

	if _, err := n.sesClient.SendEmail(ctx, input); err != nil && n.log != nil {
		n.log.Error("critical alert email failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (n *Notifier) publishSNS(ctx context.Context, subject, body string) {
	if n.snsClient == nil || n.cfg.AWS.SNS.TopicARN == "" {
		return
	}

	input := &sns.PublishInput{
		TopicArn: awssdk.String(n.cfg.AWS.SNS.TopicARN),
		Subject:  awssdk.String(subject),
		Message:  awssdk.String(body),
	}

	if _, err := n.snsClient.Publish(ctx, input); err != nil && n.log != nil {
		n.log.Error("critical alert publish failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
