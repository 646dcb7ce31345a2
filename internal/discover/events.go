package discover

import "time"

// VocabUpdatedEvent is published to Kafka after a discovery run has been
// persisted, so serving instances can reload the new vocabulary.
type VocabUpdatedEvent struct {
	RunID      int64     `json:"run_id"`
	Corpus     string    `json:"corpus"`
	EntryCount int       `json:"entry_count"`
	FinishedAt time.Time `json:"finished_at"`
}
