package bencode

import "fmt"

// Error is the codec's error taxonomy. Pos is the byte offset in the input
// where the failure was detected.
type Error struct {
	Kind string
	Pos  int
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("bencode: %s at byte %d: %s", e.Kind, e.Pos, e.Msg)
	}
	return fmt.Sprintf("bencode: %s at byte %d", e.Kind, e.Pos)
}

func errUnexpectedByte(pos int) error {
	return &Error{Kind: "UnexpectedByte", Pos: pos}
}

func errTruncated(pos int) error {
	return &Error{Kind: "Truncated", Pos: pos}
}

func errBadLength(pos int, msg string) error {
	return &Error{Kind: "BadLength", Pos: pos, Msg: msg}
}

func errBadInteger(pos int, msg string) error {
	return &Error{Kind: "BadInteger", Pos: pos, Msg: msg}
}

func errUnorderedOrDuplicateKey(pos int) error {
	return &Error{Kind: "UnorderedOrDuplicateKey", Pos: pos}
}

func errNonStringDictKey(pos int) error {
	return &Error{Kind: "NonStringDictKey", Pos: pos}
}
