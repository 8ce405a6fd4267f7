package workflow

// the three end-to-end operations
type Operation string

const (
	OpUpload   Operation = "upload"
	OpDownload Operation = "download"
	OpDelete   Operation = "delete"
)

// State is a step of a workflow.
//
// upload:   LockRequested -> Busy | Locked -> Creating -> Writing -> Done | Failed -> Unlocked
// delete:   LockRequested -> Busy | Locked -> Deleting -> Done | Failed -> Unlocked
// download: Reading -> Done | Failed
type State int

const (
	StateIdle State = iota
	StateLockRequested
	StateLocked
	StateBusy
	StateCreating
	StateWriting
	StateDeleting
	StateReading
	StateDone
	StateFailed
	StateUnlocked
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLockRequested:
		return "lock_requested"
	case StateLocked:
		return "locked"
	case StateBusy:
		return "busy"
	case StateCreating:
		return "creating"
	case StateWriting:
		return "writing"
	case StateDeleting:
		return "deleting"
	case StateReading:
		return "reading"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateUnlocked:
		return "unlocked"
	default:
		return "unknown"
	}
}

// Observer is told about every state a workflow enters.
type Observer func(op Operation, name string, state State)
