package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/passgate/internal/passcode/entity"
	"github.com/shandysiswandi/passgate/internal/passcode/usecase"
	"github.com/shandysiswandi/passgate/internal/pkg/instrument"
	"github.com/shandysiswandi/passgate/internal/pkg/messaging"
	"github.com/shandysiswandi/passgate/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishPasscodeIssued(ctx context.Context, msg usecase.PasscodeIssuedEvent) error {
	return m.publish(ctx, "PublishPasscodeIssued", event.PasscodeIssuedDestination, msg.Identity, event.PasscodeIssuedMessage{
		Email:     msg.Identity.Email,
		Tenant:    msg.Identity.Tenant,
		MessageID: msg.MessageID,
		ExpiresAt: msg.ExpiresAt,
	})
}

func (m *Messaging) PublishPasscodeVerified(ctx context.Context, msg usecase.PasscodeVerifiedEvent) error {
	return m.publish(ctx, "PublishPasscodeVerified", event.PasscodeVerifiedDestination, msg.Identity, event.PasscodeVerifiedMessage{
		Email:      msg.Identity.Email,
		Tenant:     msg.Identity.Tenant,
		VerifiedAt: msg.VerifiedAt,
	})
}

func (m *Messaging) PublishPasscodeRejected(ctx context.Context, msg usecase.PasscodeRejectedEvent) error {
	return m.publish(ctx, "PublishPasscodeRejected", event.PasscodeRejectedDestination, msg.Identity, event.PasscodeRejectedMessage{
		Email:  msg.Identity.Email,
		Tenant: msg.Identity.Tenant,
		Reason: msg.Reason.String(),
	})
}

// publish keys messages by identity so Kafka keeps one identity's events on
// one partition, in order.
func (m *Messaging) publish(ctx context.Context, spanName, destination string, id entity.Identity, payload any) error {
	ctx, span := m.ins.Tracer("passcode.outbound.mq").Start(ctx, spanName)
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(id.Key()),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
