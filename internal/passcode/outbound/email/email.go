package email

import (
	"bytes"
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	htmltemplate "html/template"
	"math"
	"strconv"
	texttemplate "text/template"

	"github.com/shandysiswandi/passgate/internal/passcode/entity"
	"github.com/shandysiswandi/passgate/internal/passcode/usecase"
	"github.com/shandysiswandi/passgate/internal/pkg/config"
	"github.com/shandysiswandi/passgate/internal/pkg/instrument"
	"github.com/shandysiswandi/passgate/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultSubject = "Your verification code"
	defaultProduct = "Passgate"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type templateData struct {
	Product    string
	Tenant     string
	ShowTenant bool
	Code       string
	Minutes    int
}

// Mail renders the passcode notification and hands it to a mail driver.
type Mail struct {
	client mail.Mail
	cfg    config.Config
	ins    instrument.Instrumentation
	html   *htmltemplate.Template
	text   *texttemplate.Template
}

func New(client mail.Mail, cfg config.Config, ins instrument.Instrumentation) (*Mail, error) {
	html, err := htmltemplate.New("passcode.html.tmpl").Option("missingkey=zero").ParseFS(templateFS, "templates/passcode.html.tmpl")
	if err != nil {
		return nil, err
	}
	text, err := texttemplate.New("passcode.txt.tmpl").Option("missingkey=zero").ParseFS(templateFS, "templates/passcode.txt.tmpl")
	if err != nil {
		return nil, err
	}

	return &Mail{client: client, cfg: cfg, ins: ins, html: html, text: text}, nil
}

func (m *Mail) SendPasscode(ctx context.Context, msg usecase.PasscodeMail) (string, error) {
	ctx, span := m.ins.Tracer("passcode.outbound.email").Start(ctx, "SendPasscode")
	defer span.End()
	span.SetAttributes(attribute.String("passcode.tenant", msg.Identity.Tenant))

	data := templateData{
		Product:    m.cfgString("modules.passcode.mail.product_name", defaultProduct),
		Tenant:     msg.Identity.Tenant,
		ShowTenant: msg.Identity.Tenant != entity.DefaultTenant,
		Code:       msg.Code,
		Minutes:    int(math.Ceil(msg.TTL.Minutes())),
	}

	var html, text bytes.Buffer
	if err := m.html.Execute(&html, data); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if err := m.text.Execute(&text, data); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	receipt, err := m.client.Send(ctx, mail.Message{
		From:           m.cfg.GetString("modules.passcode.mail.from"),
		To:             []string{msg.Identity.Email},
		Subject:        m.cfgString("modules.passcode.mail.subject", defaultSubject),
		HTMLBody:       html.String(),
		TextBody:       text.String(),
		IdempotencyKey: idempotencyKey(msg),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return receipt.ID, nil
}

func (m *Mail) cfgString(key, def string) string {
	if v := m.cfg.GetString(key); v != "" {
		return v
	}
	return def
}

// idempotencyKey is stable for one issued code, so a provider-side retry
// never sends the same code twice. The code is part of the digest because
// two issues can share an expiry under a coarse clock.
func idempotencyKey(msg usecase.PasscodeMail) string {
	sum := sha256.Sum256([]byte(msg.Identity.Key() + "|" + strconv.FormatInt(msg.ExpiresAt.UnixNano(), 10) + "|" + msg.Code))
	return "passcode-" + hex.EncodeToString(sum[:16])
}
