package engine

// ActionType enumerates the component mutations reachable from hotkeys.
type ActionType string

const (
	ActionNumberIncrease ActionType = "number_increase"
	ActionNumberDecrease ActionType = "number_decrease"
	ActionNumberReset    ActionType = "number_reset"
	ActionTimerStart     ActionType = "timer_start"
	ActionTimerStop      ActionType = "timer_stop"
	ActionTimerReset     ActionType = "timer_reset"
	ActionTimerIncrease  ActionType = "timer_increase"
	ActionTimerDecrease  ActionType = "timer_decrease"
	ActionToggleForward  ActionType = "image_toggle_forward"
	ActionToggleBackward ActionType = "image_toggle_backward"
)

// Action is one requested mutation against a component.
type Action struct {
	Type ActionType
	ID   string
}
