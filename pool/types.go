package pool

// Task is a unit of work submitted to a Pool. It takes no arguments, returns
// nothing, and runs exactly once on exactly one worker.
type Task func()

type messageKind uint8

const (
	msgNewTask messageKind = iota
	msgTerminate
)

func (k messageKind) String() string {
	switch k {
	case msgNewTask:
		return "new_task"
	case msgTerminate:
		return "terminate"
	default:
		return "unknown"
	}
}

// message is the unit carried by the shared queue. A message is owned by the
// queue until a single worker dequeues it and is never re-enqueued.
type message struct {
	kind messageKind
	task Task

	// onDone, when set, is called by the worker after task returns or panics.
	onDone func(perr *TaskPanicError)
}

func newTaskMessage(task Task) message {
	return message{kind: msgNewTask, task: task}
}

func terminateMessage() message {
	return message{kind: msgTerminate}
}
