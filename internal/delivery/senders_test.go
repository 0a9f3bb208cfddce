package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanwtom/travora-backend/pkg/db/models"
	"github.com/alanwtom/travora-backend/pkg/enums"
	"github.com/alanwtom/travora-backend/pkg/logger"
	"github.com/alanwtom/travora-backend/pkg/push"
)

type fakeDeviceSource struct {
	tokens  []models.DeviceToken
	listErr error
	revoked []string
}

func (f *fakeDeviceSource) ListActiveByUser(context.Context, uuid.UUID) ([]models.DeviceToken, error) {
	return f.tokens, f.listErr
}

func (f *fakeDeviceSource) RevokeByToken(_ context.Context, token string, _ time.Time) (bool, error) {
	f.revoked = append(f.revoked, token)
	return true, nil
}

type fakePushGateway struct {
	lastMsg *push.Message
	tickets []push.Ticket
	err     error
}

func (f *fakePushGateway) Send(_ context.Context, msg push.Message) ([]push.Ticket, error) {
	f.lastMsg = &msg
	return f.tickets, f.err
}

type fakeFunctionInvoker struct {
	lastName    string
	lastPayload any
	err         error
}

func (f *fakeFunctionInvoker) Invoke(_ context.Context, name string, payload any) error {
	f.lastName = name
	f.lastPayload = payload
	return f.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "delivery-test", Level: zerolog.Disabled})
}

func deviceToken(token string) models.DeviceToken {
	return models.DeviceToken{ID: uuid.New(), UserID: uuid.New(), Token: token, Platform: "ios"}
}

func TestPushSender_NoDevicesIsSuccess(t *testing.T) {
	devices := &fakeDeviceSource{}
	gateway := &fakePushGateway{}
	sender, err := NewPushSender(devices, gateway, testLogger())
	require.NoError(t, err)

	n := pendingNotification(enums.PriorityHigh, enums.ChannelPush)
	require.NoError(t, sender.Send(context.Background(), n))
	assert.Nil(t, gateway.lastMsg, "no gateway call without tokens")
}

func TestPushSender_HighPriorityGetsSound(t *testing.T) {
	devices := &fakeDeviceSource{tokens: []models.DeviceToken{deviceToken("ExponentPushToken[aaa]")}}
	gateway := &fakePushGateway{tickets: []push.Ticket{{Status: "ok", ID: "t1"}}}
	sender, err := NewPushSender(devices, gateway, testLogger())
	require.NoError(t, err)

	n := pendingNotification(enums.PriorityHigh, enums.ChannelPush)
	n.Data = json.RawMessage(`{"booking_id":"b-1"}`)
	require.NoError(t, sender.Send(context.Background(), n))

	require.NotNil(t, gateway.lastMsg)
	assert.Equal(t, []string{"ExponentPushToken[aaa]"}, gateway.lastMsg.Tokens)
	assert.Equal(t, "high", gateway.lastMsg.Priority)
	assert.Equal(t, "default", gateway.lastMsg.Sound)
	assert.Equal(t, "b-1", gateway.lastMsg.Data["booking_id"])

	lowGateway := &fakePushGateway{tickets: []push.Ticket{{Status: "ok"}}}
	lowSender, err := NewPushSender(devices, lowGateway, testLogger())
	require.NoError(t, err)
	require.NoError(t, lowSender.Send(context.Background(), pendingNotification(enums.PriorityLow, enums.ChannelPush)))
	assert.Equal(t, "default", lowGateway.lastMsg.Priority)
	assert.Empty(t, lowGateway.lastMsg.Sound)
}

func TestPushSender_RevokesDeadTokens(t *testing.T) {
	devices := &fakeDeviceSource{tokens: []models.DeviceToken{
		deviceToken("ExponentPushToken[live]"),
		deviceToken("ExponentPushToken[dead]"),
	}}
	gateway := &fakePushGateway{tickets: []push.Ticket{
		{Status: "ok", ID: "t1"},
		{Status: "error", Message: "device gone", Details: push.TicketDetails{Error: "DeviceNotRegistered"}},
	}}
	sender, err := NewPushSender(devices, gateway, testLogger())
	require.NoError(t, err)

	n := pendingNotification(enums.PriorityMedium, enums.ChannelPush)
	require.NoError(t, sender.Send(context.Background(), n), "partial success still counts")
	assert.Equal(t, []string{"ExponentPushToken[dead]"}, devices.revoked)
}

func TestPushSender_AllRejectedFails(t *testing.T) {
	devices := &fakeDeviceSource{tokens: []models.DeviceToken{deviceToken("ExponentPushToken[dead]")}}
	gateway := &fakePushGateway{tickets: []push.Ticket{
		{Status: "error", Details: push.TicketDetails{Error: "DeviceNotRegistered"}},
	}}
	sender, err := NewPushSender(devices, gateway, testLogger())
	require.NoError(t, err)

	err = sender.Send(context.Background(), pendingNotification(enums.PriorityMedium, enums.ChannelPush))
	require.Error(t, err)
	assert.Equal(t, []string{"ExponentPushToken[dead]"}, devices.revoked)
}

func TestPushSender_GatewayErrorPropagates(t *testing.T) {
	devices := &fakeDeviceSource{tokens: []models.DeviceToken{deviceToken("ExponentPushToken[aaa]")}}
	gateway := &fakePushGateway{err: errors.New("gateway unreachable")}
	sender, err := NewPushSender(devices, gateway, testLogger())
	require.NoError(t, err)

	err = sender.Send(context.Background(), pendingNotification(enums.PriorityHigh, enums.ChannelPush))
	require.ErrorContains(t, err, "gateway unreachable")
}

func TestEmailSender_InvokesHostedFunction(t *testing.T) {
	invoker := &fakeFunctionInvoker{}
	sender, err := NewEmailSender(invoker)
	require.NoError(t, err)

	n := pendingNotification(enums.PriorityHigh, enums.ChannelEmail)
	require.NoError(t, sender.Send(context.Background(), n))

	assert.Equal(t, "send-email-notification", invoker.lastName)
	payload, ok := invoker.lastPayload.(map[string]any)
	require.True(t, ok)
	inner, ok := payload["notification"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, n.ID, inner["id"])
	assert.Equal(t, n.Title, inner["title"])
	assert.Equal(t, n.UserID, inner["userId"])
}

func TestInAppSenderAlwaysSucceeds(t *testing.T) {
	sender := NewInAppSender()
	assert.Equal(t, enums.ChannelInApp, sender.Channel())
	assert.NoError(t, sender.Send(context.Background(), pendingNotification(enums.PriorityLow, enums.ChannelInApp)))
}
