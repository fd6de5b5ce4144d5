// Package smtp предоставляет транспорт для отправки почтовых уведомлений.
package smtp

import "io"

// Client покрывает подмножество net/smtp.Client, достаточное
// для отправки одного письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface открывает соединения с SMTP-сервером.
// Воркер рассылки открывает отдельное соединение на каждое письмо.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}
