// Package dialog implements the per-conversation intake script: the
// state machine that walks a user through name and income collection,
// confirmation, and submission.
package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"quotebot/internal/domain"
)

// Greeting is the fixed opening prompt. The inbound-call greeter speaks
// the same line.
const Greeting = "Hello! Please tell me your first name."

const (
	msgAskLastName   = "Got it, %s. Now, please tell me your last name."
	msgAskIncome     = "Got it, %s. Now, please tell me your monthly income."
	msgAskIncomeLast = "Thanks, %s. What is your monthly income?"
	msgBadIncome     = "That doesn't look like a number. Please tell me your monthly income as a number."
	msgConfirmShort  = `Please confirm: First Name: %s, Monthly Income: $%s. Say "yes" to confirm or "no" to restart.`
	msgConfirmFull   = `Please confirm: First Name: %s, Last Name: %s, Monthly Income: $%s. Say "yes" to confirm or "no" to restart.`
	msgResult        = "Your application has been %s for a card. Thank you!"
	msgApology       = "Sorry, there was an error processing your request. Please try again."
	msgRestart       = "Let's start over. Please tell me your first name."
)

// DecisionSubmitter submits a completed application and returns the
// decision string.
type DecisionSubmitter interface {
	Submit(ctx context.Context, applicant domain.Applicant) (string, error)
}

// Machine is the pure dialogue decision logic. Given the current
// session and one raw input it advances the step, mutates the collected
// data, and produces exactly one outbound message. The only side effect
// is the decision submission at the confirmation step.
type Machine struct {
	decisions       DecisionSubmitter
	collectLastName bool
}

// NewMachine creates a dialogue machine. collectLastName selects
// whether the script asks for a last name between first name and
// income.
func NewMachine(decisions DecisionSubmitter, collectLastName bool) *Machine {
	return &Machine{
		decisions:       decisions,
		collectLastName: collectLastName,
	}
}

// Next processes one turn. It mutates session in place and returns the
// message to deliver. Decision failures never propagate: they are
// converted into an apology and the session keeps its step and data so
// the next "yes" retries.
func (m *Machine) Next(ctx context.Context, session *domain.Session, input string) string {
	switch session.Step {
	case domain.StepStart:
		session.Step = domain.StepFirstName
		return Greeting

	case domain.StepFirstName:
		session.Data.FirstName = input
		if m.collectLastName {
			session.Step = domain.StepLastName
			return fmt.Sprintf(msgAskLastName, session.Data.FirstName)
		}
		session.Step = domain.StepIncome
		return fmt.Sprintf(msgAskIncome, session.Data.FirstName)

	case domain.StepLastName:
		session.Data.LastName = input
		session.Step = domain.StepIncome
		return fmt.Sprintf(msgAskIncomeLast, session.Data.LastName)

	case domain.StepIncome:
		// Stay on the income step and reprompt rather than carrying an
		// invalid value into the application. ParseFloat accepts "NaN"
		// and "Inf" spellings, so those are screened out explicitly.
		income, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
		if err != nil || math.IsNaN(income) || math.IsInf(income, 0) || income < 0 {
			return msgBadIncome
		}
		session.Data.MonthlyIncome = &income
		session.Step = domain.StepConfirm
		return m.confirmation(session.Data)

	case domain.StepConfirm:
		return m.confirm(ctx, session, input)

	default:
		// Unreachable through ParseStep, but an unknown step must never
		// swallow a turn silently.
		slog.Error("Unknown dialogue step, restarting conversation",
			"conversation_id", session.ConversationID, "step", session.Step)
		session.Reset()
		session.Step = domain.StepFirstName
		return Greeting
	}
}

func (m *Machine) confirm(ctx context.Context, session *domain.Session, input string) string {
	if !strings.EqualFold(strings.TrimSpace(input), "yes") {
		session.Reset()
		return msgRestart
	}

	verdict, err := m.decisions.Submit(ctx, session.Data)
	if err != nil {
		slog.Warn("Decision submission failed",
			"conversation_id", session.ConversationID, "error", err)
		return msgApology
	}

	session.Reset()
	return fmt.Sprintf(msgResult, verdict)
}

func (m *Machine) confirmation(data domain.Applicant) string {
	income := strconv.FormatFloat(*data.MonthlyIncome, 'f', -1, 64)
	if m.collectLastName {
		return fmt.Sprintf(msgConfirmFull, data.FirstName, data.LastName, income)
	}
	return fmt.Sprintf(msgConfirmShort, data.FirstName, income)
}
