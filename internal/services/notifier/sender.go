package notifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/textproto"
	"strings"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/smtp"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/billing"
)

// SenderService отправляет напоминания из очереди письмами.
type SenderService struct {
	transport smtp.Dialer
	biller    billing.Biller
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.Dialer, biller billing.Biller, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		biller:    biller,
		log:       log,
	}
}

// SendReminder разбирает напоминание из очереди и отправляет письмо абоненту.
// Текст письма тот же, что в ссылке mailto. Нечитаемое тело и отказ сервера
// с кодом 5xx возвращаются как rabbitmq.ErrPermanent: повтор их не исправит.
func (s *SenderService) SendReminder(body []byte) error {
	const op = "notifier.SendReminder"

	var r billing.Reminder
	if err := json.Unmarshal(body, &r); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Op(op), sl.Err(err))
		return fmt.Errorf("%s: %w: error unmarshalling message: %w", op, rabbitmq.ErrPermanent, err)
	}
	if r.Subscriber.Email == "" {
		s.log.Warn("reminder without recipient dropped", sl.Op(op), slog.String("subscriber", r.Subscriber.ID))
		return nil
	}
	if err := s.sendEmail(s.biller.Letter(r)); err != nil {
		if rejected(err) {
			return fmt.Errorf("%s: %w: %w", op, rabbitmq.ErrPermanent, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// rejected сообщает, что SMTP-сервер окончательно отказал (коды 5xx).
func rejected(err error) bool {
	var protoErr *textproto.Error
	return errors.As(err, &protoErr) && protoErr.Code >= 500
}

func (s *SenderService) sendEmail(letter billing.Letter) error {
	from := s.transport.From()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + letter.To,
		"Subject: " + letter.Subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		strings.ReplaceAll(letter.Body, "\n", "\r\n"),
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}
	if err := client.Rcpt(letter.To); err != nil {
		s.log.Error("failed to set RCPT TO", slog.String("recipient", letter.To), sl.Err(err))
		return err
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.String("to", letter.To))
	return nil
}
