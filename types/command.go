package types

// Op identifies one decoded host command. The serial protocol parses text
// lines into Commands; the sequencer applies them at step boundaries.
type Op uint8

const (
	// OpTouch carries no action; it marks host activity (any received
	// byte) which resets the idle timer and wakes an idle device.
	OpTouch Op = iota

	OpStart
	OpPause
	OpStop
	OpIdleEnter
	OpIdleExit

	OpSetKind   // Arg0 = pattern kind
	OpSetSlot   // Arg0 = slot 0..2, Arg1 = value (kind-dependent meaning)
	OpSetStride // Arg0 = stride
	OpSetMask   // Arg0 = mask radius, 0 disables

	OpSetPixel // Arg0,Arg1,Arg2 = x, y, color

	OpCamConfigure // Camera field
	OpCamTest      // Arg0 = enabled 0/1, Arg1 = pulse width ms

	OpEchoOn
	OpEchoOff
	OpExport
)

// Command is the decoded form of one protocol line.
type Command struct {
	Op               Op
	Arg0, Arg1, Arg2 int
	Camera           CameraSettings
}
