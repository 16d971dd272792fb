package mailer

import "context"

// Mailer renders the named template from templates/ with data and sends it.
type Mailer interface {
	Send(ctx context.Context, recipient, templateFile string, data any) error
}
