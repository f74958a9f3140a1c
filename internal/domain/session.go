// Package domain contains core domain types for the intake bot.
package domain

import (
	"fmt"
	"time"
)

// Step identifies where a conversation is in the intake script.
type Step string

// The closed set of dialogue steps. Anything else is a storage-level
// consistency fault and is rejected by ParseStep.
const (
	StepStart     Step = "start"
	StepFirstName Step = "firstName"
	StepLastName  Step = "lastName"
	StepIncome    Step = "income"
	StepConfirm   Step = "confirm"
)

// ParseStep validates a raw step value read from storage.
func ParseStep(raw string) (Step, error) {
	switch Step(raw) {
	case StepStart, StepFirstName, StepLastName, StepIncome, StepConfirm:
		return Step(raw), nil
	}
	return "", fmt.Errorf("unknown dialogue step %q", raw)
}

// Applicant holds the fields collected during the intake script.
// MonthlyIncome is nil until the income step has been passed.
type Applicant struct {
	FirstName     string   `json:"firstName,omitempty"`
	LastName      string   `json:"lastName,omitempty"`
	MonthlyIncome *float64 `json:"monthlyIncome,omitempty"`
}

// Empty reports whether no field has been collected yet.
func (a Applicant) Empty() bool {
	return a.FirstName == "" && a.LastName == "" && a.MonthlyIncome == nil
}

// Session is the per-conversation state record. One exists per
// conversation ID; it is created lazily on the first inbound message.
type Session struct {
	ConversationID string
	Step           Step
	Data           Applicant
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewSession returns a fresh session at the start of the script.
func NewSession(conversationID string) *Session {
	now := time.Now()
	return &Session{
		ConversationID: conversationID,
		Step:           StepStart,
		Data:           Applicant{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Reset returns the session to the top of the script and drops all
// collected data. Used on explicit restart and after a submission.
func (s *Session) Reset() {
	s.Step = StepStart
	s.Data = Applicant{}
}
