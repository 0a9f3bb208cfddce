package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alanwtom/travora-backend/pkg/db/models"
	"github.com/alanwtom/travora-backend/pkg/enums"
	pkgerrors "github.com/alanwtom/travora-backend/pkg/errors"
	"github.com/alanwtom/travora-backend/pkg/logger"
	"github.com/alanwtom/travora-backend/pkg/push"
)

// Sender delivers a notification through one channel. Implementations must be
// safe for concurrent use; the queue fans out to all channels of an attempt
// at once.
type Sender interface {
	Channel() enums.NotificationChannel
	Send(ctx context.Context, notification *models.Notification) error
}

type deviceTokenSource interface {
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]models.DeviceToken, error)
	RevokeByToken(ctx context.Context, token string, now time.Time) (bool, error)
}

type pushGateway interface {
	Send(ctx context.Context, msg push.Message) ([]push.Ticket, error)
}

type functionInvoker interface {
	Invoke(ctx context.Context, name string, payload any) error
}

// PushSender fans a notification out to every active device token the user
// has. Dead tokens reported by the gateway are revoked on the spot.
type PushSender struct {
	devices deviceTokenSource
	gateway pushGateway
	logg    *logger.Logger
}

// NewPushSender wires the push channel.
func NewPushSender(devices deviceTokenSource, gateway pushGateway, logg *logger.Logger) (*PushSender, error) {
	if devices == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "device token source required")
	}
	if gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "push gateway required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &PushSender{devices: devices, gateway: gateway, logg: logg}, nil
}

func (s *PushSender) Channel() enums.NotificationChannel { return enums.ChannelPush }

func (s *PushSender) Send(ctx context.Context, notification *models.Notification) error {
	tokens, err := s.devices.ListActiveByUser(ctx, notification.UserID)
	if err != nil {
		return fmt.Errorf("list device tokens: %w", err)
	}
	if len(tokens) == 0 {
		// Nothing to push to. Counting this as success keeps device-less
		// users from burning every attempt on a channel that cannot land.
		s.logg.Info(s.logg.WithNotificationID(ctx, notification.ID.String()), "no active devices, push skipped")
		return nil
	}

	msg := push.Message{
		Title:    notification.Title,
		Body:     notification.Body,
		Priority: "default",
	}
	if notification.Priority == enums.PriorityHigh {
		msg.Priority = "high"
		msg.Sound = "default"
	}
	if len(notification.Data) > 0 {
		var data map[string]any
		if err := json.Unmarshal(notification.Data, &data); err == nil {
			msg.Data = data
		}
	}
	for _, token := range tokens {
		msg.Tokens = append(msg.Tokens, token.Token)
	}

	tickets, err := s.gateway.Send(ctx, msg)
	if err != nil {
		return err
	}

	delivered := 0
	for i, ticket := range tickets {
		if ticket.Status != "error" {
			delivered++
			continue
		}
		if ticket.DeviceNotRegistered() && i < len(msg.Tokens) {
			if _, revokeErr := s.devices.RevokeByToken(ctx, msg.Tokens[i], time.Now().UTC()); revokeErr != nil {
				s.logg.Error(ctx, "revoking dead device token", revokeErr)
			}
		}
	}
	if delivered == 0 {
		return fmt.Errorf("push rejected for all %d devices", len(msg.Tokens))
	}
	return nil
}

// EmailSender delegates rendering and SMTP to the hosted
// send-email-notification function.
type EmailSender struct {
	functions functionInvoker
}

// NewEmailSender wires the email channel.
func NewEmailSender(functions functionInvoker) (*EmailSender, error) {
	if functions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "function invoker required")
	}
	return &EmailSender{functions: functions}, nil
}

func (s *EmailSender) Channel() enums.NotificationChannel { return enums.ChannelEmail }

func (s *EmailSender) Send(ctx context.Context, notification *models.Notification) error {
	payload := map[string]any{
		"notification": map[string]any{
			"id":     notification.ID,
			"title":  notification.Title,
			"body":   notification.Body,
			"userId": notification.UserID,
		},
	}
	return s.functions.Invoke(ctx, "send-email-notification", payload)
}

// InAppSender records the in-app entry. The notification row itself is the
// in-app feed, so marking the completion flag is the whole delivery; the
// queue persists it with the rest of the attempt state.
type InAppSender struct{}

// NewInAppSender wires the in-app channel.
func NewInAppSender() *InAppSender { return &InAppSender{} }

func (s *InAppSender) Channel() enums.NotificationChannel { return enums.ChannelInApp }

func (s *InAppSender) Send(context.Context, *models.Notification) error { return nil }
