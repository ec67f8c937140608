package db

import (
	"context"

	"gorm.io/gorm"

	"crosschain-verification/internal/logger"
	"crosschain-verification/internal/models"
	"crosschain-verification/internal/voting"
)

// Journal accepts outbound vote messages and persists them as audit records.
// It stands where the chain broadcaster would; records are never read back
// into the voting path. A nil *gorm.DB disables persistence and keeps only
// the log line.
type Journal struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewJournal creates a journal over an optional database handle.
func NewJournal(db *gorm.DB, log *logger.Logger) *Journal {
	return &Journal{db: db, log: log}
}

// Submit records each cast-vote message. Messages that do not decode as vote
// executions are skipped; the verification handlers only emit vote messages.
func (j *Journal) Submit(ctx context.Context, msgs []voting.MsgExecuteContract) error {
	for _, msg := range msgs {
		payload, ok := voting.DecodeVoteMsg(msg.Msg)
		if !ok {
			j.log.Printf("journal: skipping non-vote message for %s", msg.Contract)
			continue
		}
		j.log.Printf("vote cast: poll=%s contract=%s votes=%d", payload.PollID, msg.Contract, len(payload.Votes))
		if j.db == nil {
			continue
		}

		record := models.PollRecord{
			PollID:    payload.PollID.String(),
			Contract:  msg.Contract,
			Sender:    msg.Sender,
			VoteCount: len(payload.Votes),
		}
		if err := j.db.WithContext(ctx).Create(&record).Error; err != nil {
			return err
		}
		votes := make([]models.VoteRecord, len(payload.Votes))
		for i, vote := range payload.Votes {
			votes[i] = models.VoteRecord{
				PollID:       payload.PollID.String(),
				Contract:     msg.Contract,
				MessageIndex: i,
				Vote:         string(vote),
			}
		}
		if len(votes) == 0 {
			continue
		}
		if err := j.db.WithContext(ctx).CreateInBatches(votes, 1000).Error; err != nil {
			return err
		}
	}
	return nil
}
