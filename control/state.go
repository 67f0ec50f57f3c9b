package control

import "github.com/qmuntal/stateless"

// gadgetState models the attach lifecycle spec.md §4.3 names: Idle
// through SET_ADDRESS (handled entirely by the UDC hardware and never
// surfaced as an event on the USB_RAW_IOCTL_EVENT_FETCH stream this
// driver reads) to Configured. Only the two states this driver can
// actually observe are modeled; there is no "addressed" state here
// because nothing in that stream ever corresponds to it.
type gadgetState string

const (
	stateIdle       gadgetState = "idle"
	stateConfigured gadgetState = "configured"
)

type gadgetTrigger string

const (
	triggerConfigure gadgetTrigger = "configure"
	triggerReset     gadgetTrigger = "reset"
)

// newGadgetFSM builds the attach state machine, grounded in the same
// stateless.StateMachine shape u-bmc's pkg/state package wraps for its
// own hardware lifecycle FSM. SET_CONFIGURATION is a one-way transition
// per attach (spec.md §4.3): Configured has no outgoing "configure"
// edge, so firing it twice after the first success is rejected by
// CanFire rather than re-running endpoint bring-up.
func newGadgetFSM() *stateless.StateMachine {
	fsm := stateless.NewStateMachine(stateIdle)
	fsm.Configure(stateIdle).
		Permit(triggerConfigure, stateConfigured)
	fsm.Configure(stateConfigured).
		Permit(triggerReset, stateIdle)
	return fsm
}
