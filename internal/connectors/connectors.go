package connectors

import "camops/internal"

// MailConnector fetches inventory export messages. The subject filter is
// applied server-side where the provider supports it.
type MailConnector interface {
	FetchInbox(label, subject string, max int) ([]internal.FetchedMailMessage, error)
}
