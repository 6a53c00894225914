package connectors

import (
	"strings"

	"camops/internal/storage"
)

// FetchService pulls asset export messages and archives them for the dump
// pipeline. Messages whose subject does not carry the export marker are
// ignored even when the provider cannot filter server-side.
type FetchService struct {
	db        *storage.DB
	connector MailConnector
	store     *MailStoreService
}

type FetchResult struct {
	Fetched int
	Stored  int
	Skipped int
}

func NewFetchService(db *storage.DB, rawMailDir string, connector MailConnector) *FetchService {
	return &FetchService{
		db:        db,
		connector: connector,
		store:     NewMailStoreService(db, rawMailDir),
	}
}

func (s *FetchService) FetchAndStore(label, subject string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(label, subject, max)
	if err != nil {
		return FetchResult{}, err
	}

	result := FetchResult{Fetched: len(messages)}
	for _, msg := range messages {
		if subject != "" && !strings.Contains(strings.ToLower(msg.Subject), strings.ToLower(subject)) {
			result.Skipped++
			continue
		}
		if _, err := s.store.Store(msg); err != nil {
			return result, err
		}
		result.Stored++
	}

	return result, nil
}
