package repositories

import (
	"context"
	"database/sql"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/sqlite"
	"log/slog"
)

var ErrNotFound = errors.NewSentinel("not found")

// TranscriptRepository archives what was asked and who was accused. Cases are never rebuilt from it.
type TranscriptRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewTranscriptRepository(db *sqlite.Database, logger *slog.Logger) *TranscriptRepository {
	return &TranscriptRepository{
		db:     db,
		logger: logger.With("source", "TranscriptRepository"),
	}
}

// AppendCompletion adds a question and its answer to the end of the session's transcript.
func (r *TranscriptRepository) AppendCompletion(
	ctx context.Context,
	sessionID string,
	suspectID string,
	question string,
	answer string,
) error {
	stmt := `INSERT INTO completions (session_id, suspect_id, question, answer, "order")
VALUES (:session_id, :suspect_id, :question, :answer,
        (SELECT COALESCE(MAX("order") + 1, 0) FROM completions WHERE session_id = :session_id))`
	params := map[string]any{
		"session_id": sessionID,
		"suspect_id": suspectID,
		"question":   question,
		"answer":     answer,
	}
	if _, err := r.db.ReadWrite.NamedExecContext(ctx, stmt, params); err != nil {
		return errors.Wrap(err, "insert completion", slog.String("session_id", sessionID))
	}
	return nil
}

// Completions returns the session's questions to suspectID in the order they were asked.
func (r *TranscriptRepository) Completions(
	ctx context.Context,
	sessionID string,
	suspectID string,
) ([]models.Completion, error) {
	var completions []models.Completion
	stmt := `SELECT id, session_id, suspect_id, "order", question, answer
FROM completions
WHERE session_id = ? AND suspect_id = ?
ORDER BY "order"`
	if err := r.db.ReadOnly.SelectContext(ctx, &completions, stmt, sessionID, suspectID); err != nil {
		return nil, errors.Wrap(err, "select completions", slog.String("session_id", sessionID))
	}
	return completions, nil
}

func (r *TranscriptRepository) RecordVerdict(ctx context.Context, verdict models.Verdict) error {
	stmt := `INSERT INTO verdicts (session_id, case_number, seed, accused_id, correct, created_at)
VALUES (:session_id, :case_number, :seed, :accused_id, :correct, :created_at)`
	if _, err := r.db.ReadWrite.NamedExecContext(ctx, stmt, verdict); err != nil {
		return errors.Wrap(err, "insert verdict", slog.String("session_id", verdict.SessionID))
	}
	return nil
}

// Verdict returns the latest verdict of a session.
func (r *TranscriptRepository) Verdict(ctx context.Context, sessionID string) (models.Verdict, error) {
	var verdict models.Verdict
	stmt := `SELECT session_id, case_number, seed, accused_id, correct, created_at
FROM verdicts
WHERE session_id = ?
ORDER BY id DESC
LIMIT 1`
	if err := r.db.ReadOnly.GetContext(ctx, &verdict, stmt, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Verdict{}, errors.Wrap(ErrNotFound, "no verdict", slog.String("session_id", sessionID))
		}
		return models.Verdict{}, errors.Wrap(err, "select verdict", slog.String("session_id", sessionID))
	}
	return verdict, nil
}

// Stats counts the verdicts given on a case and how many of them named the murderer.
func (r *TranscriptRepository) Stats(ctx context.Context, caseNumber int) (models.CaseStats, error) {
	stats := models.CaseStats{CaseNumber: caseNumber}
	stmt := `SELECT COUNT(*) AS verdicts, COALESCE(SUM(correct), 0) AS solved FROM verdicts WHERE case_number = ?`
	if err := r.db.ReadOnly.GetContext(ctx, &stats, stmt, caseNumber); err != nil {
		return models.CaseStats{}, errors.Wrap(err, "select case stats", slog.Int("case_number", caseNumber))
	}
	return stats, nil
}
