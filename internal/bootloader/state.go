package bootloader

// State is a step of the bootloader handshake. States only move forward.
type State int

const (
	AwaitingBanner State = iota
	PromptDetected
	UmsRequested
	UmsActive
	TransferComplete
	Exited
)

func (s State) String() string {
	switch s {
	case AwaitingBanner:
		return "AwaitingBanner"
	case PromptDetected:
		return "PromptDetected"
	case UmsRequested:
		return "UmsRequested"
	case UmsActive:
		return "UmsActive"
	case TransferComplete:
		return "TransferComplete"
	case Exited:
		return "Exited"
	default:
		return "State(unknown)"
	}
}
