package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Library maps entry ids to entries. Every key equals its entry's ID.
type Library map[string]Entry

var errNotObject = errors.New("library is not a JSON object")

// Decode reads a serialized library. Values that are not objects (or
// fail to decode) are skipped and their keys returned in skipped. A
// payload that is not a JSON object at all returns an error.
func Decode(data []byte) (lib Library, skipped []string, err error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, nil, errNotObject
	}

	lib = make(Library, len(raw))
	for id, msg := range raw {
		var e Entry
		if !isObject(msg) || json.Unmarshal(msg, &e) != nil {
			skipped = append(skipped, id)
			continue
		}
		e.ID = id
		lib[id] = e
	}
	sort.Strings(skipped)

	return lib, skipped, nil
}

// Encode serializes the library for storage.
func (l Library) Encode() ([]byte, error) {
	if l == nil {
		l = Library{}
	}

	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encode library: %w", err)
	}

	return b, nil
}

// Clone returns a shallow copy of the map.
func (l Library) Clone() Library {
	out := make(Library, len(l))
	for k, v := range l {
		out[k] = v
	}

	return out
}

// NormalizeStatuses rewrites every status into the canonical set and
// reports whether anything changed.
func (l Library) NormalizeStatuses() bool {
	changed := false
	for id, e := range l {
		s := string(NormalizeStatus(e.Status))
		if s != e.Status {
			e.Status = s
			l[id] = e
			changed = true
		}
	}

	return changed
}

func isObject(msg json.RawMessage) bool {
	for _, c := range msg {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case '{':
			return true
		default:
			return false
		}
	}

	return false
}
