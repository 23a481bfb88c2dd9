package types

const (
	TaskAuthEvent = "TaskAuthEvent" // persist an audit event

	TaskFailed     = 0 // failed, waiting for another run
	TaskOnGoing    = 1 // queued or running
	TaskNotStarted = 2 // paused by an operator
)
