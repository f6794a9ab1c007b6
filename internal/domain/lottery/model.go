package lottery

import (
	"fmt"
	"strings"
	"time"
)

type Type string

const (
	TypeDaily   Type = "DAILY"
	TypeWeekly  Type = "WEEKLY"
	TypeMonthly Type = "MONTHLY"
	TypeYearly  Type = "YEARLY"
)

// AllTypes is ordered from the shortest period to the longest.
var AllTypes = []Type{TypeDaily, TypeWeekly, TypeMonthly, TypeYearly}

func ParseType(raw string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(raw)))
	switch t {
	case TypeDaily, TypeWeekly, TypeMonthly, TypeYearly:
		return t, nil
	default:
		return "", fmt.Errorf("unknown lottery type %q", raw)
	}
}

type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusCompleted Status = "COMPLETED"
)

// Lottery is one drawing of a recurring period.
//
// WinnerID is only ever set together with StatusCompleted. A lottery awarded with
// no participants completes without a winner.
type Lottery struct {
	ID           string
	Type         Type
	Status       Status
	StartDate    time.Time
	WinnerID     string
	Participants []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (l Lottery) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("lottery id is required")
	}
	if _, err := ParseType(string(l.Type)); err != nil {
		return err
	}
	switch l.Status {
	case StatusCreated:
		if l.WinnerID != "" {
			return fmt.Errorf("lottery %s has a winner but is not completed", l.ID)
		}
	case StatusCompleted:
	default:
		return fmt.Errorf("unknown lottery status %q", l.Status)
	}
	if l.StartDate.IsZero() {
		return fmt.Errorf("lottery start date is required")
	}

	return nil
}

func (l Lottery) PlayerCount() int {
	return len(l.Participants)
}

func (l Lottery) HasParticipant(clientID string) bool {
	for _, id := range l.Participants {
		if id == clientID {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slice with l.
func (l Lottery) Clone() Lottery {
	l.Participants = append([]string(nil), l.Participants...)
	return l
}
