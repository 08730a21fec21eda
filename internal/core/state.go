package core

// Action is a user-triggered lifecycle step.
type Action string

const (
	ActionSend   Action = "send"
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
	ActionRevert Action = "revert"
)

type transition struct {
	from []OrderStatus
	to   OrderStatus
}

// transitions is the only place legal status changes are defined.
// Guards that need other tables (customer email, invoice existence) are
// checked by OrderService inside the same transaction.
var transitions = map[Action]transition{
	ActionSend:   {from: []OrderStatus{StatusDraft}, to: StatusSent},
	ActionAccept: {from: []OrderStatus{StatusDraft, StatusSent, StatusAccepted}, to: StatusAccepted},
	ActionReject: {from: []OrderStatus{StatusDraft, StatusSent}, to: StatusRejected},
	ActionRevert: {from: []OrderStatus{StatusAccepted, StatusRejected}, to: StatusDraft},
}

// NextStatus returns the status that action leads to from current, or a
// *StateError when the table does not allow it.
func NextStatus(current OrderStatus, action Action) (OrderStatus, error) {
	t, ok := transitions[action]
	if !ok {
		return "", newValidation("action", "unknown action %q", action)
	}
	for _, s := range t.from {
		if s == current {
			return t.to, nil
		}
	}
	return "", &StateError{Action: string(action), Status: current}
}

// CanApply reports whether action is allowed from current.
func CanApply(current OrderStatus, action Action) bool {
	_, err := NextStatus(current, action)
	return err == nil
}

// activityType is the timeline event name recorded for a transition.
func (a Action) activityType() string {
	switch a {
	case ActionSend:
		return "order_sent"
	case ActionAccept:
		return "order_accepted"
	case ActionReject:
		return "order_rejected"
	case ActionRevert:
		return "order_reverted"
	}
	return "order_" + string(a)
}
