// internal/nodeid/address.go
package nodeid

import (
	"fmt"
	"reflect"
	"strings"
)

// String serializes the Address into its canonical path string representation.
func (a *Address) String() string {
	if a == nil {
		return ""
	}

	var sb strings.Builder
	for i, segment := range a.Path {
		if i > 0 {
			sb.WriteRune('.')
		}
		sb.WriteString(segment.Name)
		if segment.Index != -1 {
			sb.WriteString(fmt.Sprintf("[%d]", segment.Index))
		}
	}

	return sb.String()
}

// Equal checks for deep equality between two Address pointers.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return reflect.DeepEqual(a.Path, other.Path)
}

// NodeName returns the name of the node the reference points into.
func (a *Address) NodeName() string {
	if a == nil || len(a.Path) == 0 {
		return ""
	}
	return a.Path[0].Name
}

// PinName returns the pin name the reference resolves to: the remaining
// segments joined with dots, with a trailing index rendered as `_<index>`.
func (a *Address) PinName() string {
	if a == nil || len(a.Path) < 2 {
		return ""
	}

	rest := a.Path[1:]
	names := make([]string, len(rest))
	for i, segment := range rest {
		names[i] = segment.Name
	}
	pin := strings.Join(names, ".")
	if last := rest[len(rest)-1]; last.HasIndex() {
		pin = fmt.Sprintf("%s_%d", pin, last.Index)
	}
	return pin
}
