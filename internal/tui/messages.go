package tui

// changedMsg is sent after a presenter call succeeded and the board holds
// fresh state.
type changedMsg struct {
	status string
}

type errorMsg struct {
	err error
}
