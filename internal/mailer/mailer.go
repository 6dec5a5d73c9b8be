// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package mailer sends transactional mail over SMTP. Delivery failures
// are reported to the caller who decides whether they are fatal; for
// credential mail they never are.
package mailer

import (
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

// ErrNotConfigured is returned when SMTP settings are absent.
var ErrNotConfigured = errors.New("mailer: SMTP is not configured")

// Mailer sends mail through a single SMTP account.
type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
}

// New creates a mailer. An empty host disables sending.
func New(host string, port int, user, pass, from string) *Mailer {
	if port <= 0 {
		port = 587
	}
	return &Mailer{host: host, port: port, user: user, pass: pass, from: from}
}

// Enabled reports whether the mailer can send.
func (m *Mailer) Enabled() bool {
	return m.host != "" && m.from != ""
}

// Send delivers a plain-text message.
func (m *Mailer) Send(to, subject, body string) error {
	if !m.Enabled() {
		return ErrNotConfigured
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	return d.DialAndSend(msg)
}

// SendNewUserCredentials mails a freshly created editor their login details.
func (m *Mailer) SendNewUserCredentials(to, username, password, loginURL string) error {
	body := fmt.Sprintf(
		"An account has been created for you.\n\n"+
			"Username: %s\n"+
			"Password: %s\n\n"+
			"Sign in at %s and change your password after the first login.\n",
		username, password, loginURL)
	return m.Send(to, "Your editor account", body)
}
