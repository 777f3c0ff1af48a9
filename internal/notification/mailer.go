// Package notification delivers approver alerts over SMTP. Delivery is
// best-effort; the request lifecycle never blocks on a mail failure.
package notification

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/dquispe/vacaciones-engine/internal/models"
)

// Config holds the SMTP settings for the mailer.
type Config struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	MailDomain string
}

// Mailer sends approval notifications through an SMTP relay. Worker mail
// addresses follow the corporate convention <codigo>@<mail_domain>.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	domain string
	logger *zap.Logger
}

// NewMailer creates a new Mailer
func NewMailer(cfg Config, logger *zap.Logger) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		domain: cfg.MailDomain,
		logger: logger,
	}
}

// NotifyApprover mails the approver of a newly active level.
func (m *Mailer) NotifyApprover(ctx context.Context, solicitud *models.Solicitud, aprobacion *models.Aprobacion) error {
	to := m.addressFor(aprobacion.CodigoTrabajadorAprueba)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Solicitud #%d pendiente de su aprobación (nivel %d)", solicitud.ID, aprobacion.Nivel))
	msg.SetBody("text/plain", m.body(solicitud, aprobacion))

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send notification to %s: %w", to, err)
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	m.logger.Info("Approver notified",
		zap.Int64("id_solicitud", solicitud.ID),
		zap.Int("nivel", aprobacion.Nivel),
		zap.String("aprobador", aprobacion.CodigoTrabajadorAprueba))
	return nil
}

func (m *Mailer) addressFor(codigo string) string {
	return strings.ToLower(codigo) + "@" + m.domain
}

func (m *Mailer) body(solicitud *models.Solicitud, aprobacion *models.Aprobacion) string {
	const dateLayout = "02/01/2006"
	tipo := "vacaciones"
	if solicitud.TipoSolicitud == models.TipoPermiso {
		tipo = "permiso"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tiene una solicitud de %s pendiente de aprobación.\n\n", tipo)
	fmt.Fprintf(&b, "Solicitud: #%d\n", solicitud.ID)
	fmt.Fprintf(&b, "Trabajador: %s\n", solicitud.CodigoTrabajador)
	fmt.Fprintf(&b, "Periodo: %s al %s (%.1f días)\n",
		solicitud.FechaInicio.Format(dateLayout),
		solicitud.FechaFin.Format(dateLayout),
		solicitud.DiasSolicitados)
	fmt.Fprintf(&b, "Nivel de aprobación: %d\n", aprobacion.Nivel)
	if solicitud.Observacion != nil {
		fmt.Fprintf(&b, "Observación: %s\n", *solicitud.Observacion)
	}
	fmt.Fprintf(&b, "\nRegistrada el %s.\n", solicitud.FechaRegistro.Format(dateLayout+" 15:04"))
	return b.String()
}
