package mq

import (
	"context"
	"encoding/json"

	"github.com/yogaprasetya/otpguard/internal/account/usecase"
	"github.com/yogaprasetya/otpguard/internal/pkg/instrument"
	"github.com/yogaprasetya/otpguard/internal/pkg/messaging"
	"github.com/yogaprasetya/otpguard/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishTwoFactorEnabled(ctx context.Context, msg usecase.TwoFactorEnabledEvent) error {
	ctx, span := m.ins.Tracer("account.outbound.mq").Start(ctx, "PublishTwoFactorEnabled")
	defer span.End()

	body, err := json.Marshal(event.TwoFactorEnabledMessage{
		AccountID: msg.AccountID,
		Email:     msg.Email,
		EnabledAt: msg.EnabledAt.Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return m.publish(ctx, event.TwoFactorEnabledDestination, body)
}

func (m *Messaging) PublishTwoFactorDisabled(ctx context.Context, msg usecase.TwoFactorDisabledEvent) error {
	ctx, span := m.ins.Tracer("account.outbound.mq").Start(ctx, "PublishTwoFactorDisabled")
	defer span.End()

	body, err := json.Marshal(event.TwoFactorDisabledMessage{
		AccountID:  msg.AccountID,
		Email:      msg.Email,
		Reason:     msg.Reason,
		DisabledAt: msg.DisabledAt.Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return m.publish(ctx, event.TwoFactorDisabledDestination, body)
}

func (m *Messaging) publish(ctx context.Context, destination string, body []byte) error {
	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		return err
	}

	return nil
}
