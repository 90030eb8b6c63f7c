package schema

import "fmt"

// ResponseKind is the verdict on a proposed link or merge.
type ResponseKind uint8

const (
	Disallow ResponseKind = iota
	Make
	// BreakOthersA allows the link after breaking the other links of pin A.
	BreakOthersA
	BreakOthersB
	BreakOthersAB
)

func (k ResponseKind) String() string {
	switch k {
	case Disallow:
		return "disallow"
	case Make:
		return "make"
	case BreakOthersA:
		return "break_others_a"
	case BreakOthersB:
		return "break_others_b"
	case BreakOthersAB:
		return "break_others_ab"
	default:
		return fmt.Sprintf("response(%d)", uint8(k))
	}
}

// Response is a verdict plus the message shown to the user.
type Response struct {
	Kind    ResponseKind
	Message string
}

// Allowed reports whether the edit may proceed.
func (r Response) Allowed() bool { return r.Kind != Disallow }

func disallow(msg string) Response { return Response{Kind: Disallow, Message: msg} }

// Messages of the responses produced by CanCreateConnection.
const (
	MsgPinMissing       = "One or both of the pins was missing"
	MsgSameNode         = "Both are on the same node"
	MsgInputToInput     = "Can't connect input node to input node"
	MsgOutputToOutput   = "Can't connect output node to output node"
	MsgCycle            = "Can't create a graph cycle"
	MsgLogicalPath      = "Can't connect logical path to non-logical path"
	MsgReplace          = "Replace connection"
	MsgConnect          = "Connect nodes"
	MsgSameNodeMerge    = "Both are the same node"
	MsgNotSubNodes      = "Only sub-nodes can be merged"
	MsgMergeIntoSubNode = "Can't merge a node into one of its own sub-nodes"
)
