package email

import (
	"fmt"

	"doorman/infrastructure"
)

// Mailer composes the onboarding and challenge messages and pushes them
// through the Dispatcher. Each send is retried once; a second failure is
// surfaced as ErrMailDelivery without touching already-committed state.
type Mailer struct {
	dispatcher Dispatcher
	baseURL    string
}

func NewMailer(dispatcher Dispatcher, baseURL string) *Mailer {
	return &Mailer{
		dispatcher: dispatcher,
		baseURL:    baseURL,
	}
}

func (m *Mailer) SendOnboard(to, username string) error {
	subject := "Welcome aboard"
	body := fmt.Sprintf("Hey %s, thanks for signing up! Your account is being set up.", username)
	return m.send(to, subject, body)
}

func (m *Mailer) SendShortcode(to, username, code string) error {
	subject := "Your verification code"
	body := fmt.Sprintf("Hi %s, enter the following shortcode to verify your account: %s", username, code)
	return m.send(to, subject, body)
}

func (m *Mailer) SendAuthLink(to, username, route string) error {
	subject := "Verify your account"
	link := fmt.Sprintf("%s/%s/%s", m.baseURL, username, route)
	body := fmt.Sprintf("Hi %s, click the following link to verify your account: %s", username, link)
	return m.send(to, subject, body)
}

func (m *Mailer) send(to, subject, body string) error {
	err := m.dispatcher.Send(to, subject, body)
	if err != nil {
		err = m.dispatcher.Send(to, subject, body)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", infrastructure.ErrMailDelivery, err)
	}
	return nil
}
