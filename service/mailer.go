// file: service/mailer.go

package service

import "go-auth-api/logger"

// Mailer delivers verification mail out of band. The production SMTP
// implementation lives outside this service; LogMailer stands in for
// development and tests.
type Mailer interface {
	SendVerificationEmail(email, token string) error
}

// LogMailer writes the verification link to the log instead of sending mail.
type LogMailer struct{}

func (LogMailer) SendVerificationEmail(email, token string) error {
	logger.Log.WithField("email", email).WithField("token", token).
		Info("Verification email (log delivery)")
	return nil
}
