package attendance

const (
	JoinKeyword  = "参加"
	LeaveKeyword = "退室"

	UnknownName = "名前不明"
)

type (
	Action  int
	Outcome int

	// SessionKey identifies whose session a leave closes. It is the display
	// name, so two users sharing a name share sessions.
	SessionKey string
)

const (
	ActionNone Action = iota
	ActionJoin
	ActionLeave
)

const (
	OutcomeIgnored Outcome = iota
	OutcomeJoined
	OutcomeLeft
	OutcomeNoOpenSession
)

var actions = map[string]Action{
	JoinKeyword:  ActionJoin,
	LeaveKeyword: ActionLeave,
}

// ParseAction maps trimmed message text to an action. Only exact keyword
// matches count.
func ParseAction(text string) Action {
	return actions[text]
}

func (a Action) String() string {
	switch a {
	case ActionJoin:
		return "join"
	case ActionLeave:
		return "leave"
	default:
		return "none"
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeJoined:
		return "joined"
	case OutcomeLeft:
		return "left"
	case OutcomeNoOpenSession:
		return "no_open_session"
	default:
		return "ignored"
	}
}
