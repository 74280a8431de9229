package email

import (
	"github.com/google/wire"

	"doorman/config"
)

// ProvideEmailSender is a Wire provider function that creates a Sender
func ProvideEmailSender(cfg *config.Config) *Sender {
	return NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
}

func ProvideDispatcher(sender *Sender) Dispatcher {
	return sender
}

func ProvideMailer(dispatcher Dispatcher, cfg *config.Config) *Mailer {
	return NewMailer(dispatcher, cfg.BaseURL)
}

var Set = wire.NewSet(ProvideEmailSender, ProvideDispatcher, ProvideMailer)
