package dashboard

import "fmt"

// ConnectionError — база недоступна при старте. Единственная фатальная ошибка сервиса.
type ConnectionError struct {
	URL string // без пароля
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database connection to %s failed: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
