// Package smtp подключается к почтовому серверу для отправки напоминаний.
package smtp

import "io"

// Client интерфейс для SMTP клиента.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// Dialer открывает сессию с почтовым сервером.
type Dialer interface {
	Connect() (Client, error)
	// From адрес отправителя.
	From() string
}
