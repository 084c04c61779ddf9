package models

import "time"

// Completion is an archived question and answer pair of one interrogation.
type Completion struct {
	ID        int64  `db:"id"`
	SessionID string `db:"session_id"`
	SuspectID string `db:"suspect_id"`
	Order     int64  `db:"order"`
	Question  string `db:"question"`
	Answer    string `db:"answer"`
}

// Verdict is an archived accusation.
type Verdict struct {
	SessionID  string    `db:"session_id"`
	CaseNumber int       `db:"case_number"`
	Seed       int64     `db:"seed"`
	AccusedID  string    `db:"accused_id"`
	Correct    bool      `db:"correct"`
	CreatedAt  time.Time `db:"created_at"`
}

// CaseStats counts the verdicts given on one case.
type CaseStats struct {
	CaseNumber int `db:"case_number"`
	Verdicts   int `db:"verdicts"`
	Solved     int `db:"solved"`
}
