package model

import (
	"encoding/json"
	"fmt"
)

// DepType is the closed set of dependency edge types. The canonical wire
// value is the two-letter code; long names from older exports are accepted
// on input.
type DepType string

const (
	FinishToStart  DepType = "FS"
	StartToStart   DepType = "SS"
	FinishToFinish DepType = "FF"
	StartToFinish  DepType = "SF"
)

var depTypeLongNames = map[string]DepType{
	"Finish to Start":  FinishToStart,
	"Start to Start":   StartToStart,
	"Finish to Finish": FinishToFinish,
	"Start to Finish":  StartToFinish,
}

// ParseDepType accepts either a two-letter code or a long name.
// An empty string means Finish-to-Start, the default edge type.
func ParseDepType(s string) (DepType, error) {
	switch DepType(s) {
	case FinishToStart, StartToStart, FinishToFinish, StartToFinish:
		return DepType(s), nil
	}
	if dt, ok := depTypeLongNames[s]; ok {
		return dt, nil
	}
	if s == "" {
		return FinishToStart, nil
	}
	return "", fmt.Errorf("unknown dependency type %q", s)
}

// UnmarshalJSON normalizes long names from older exports to the code.
func (dt *DepType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDepType(s)
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}

// IsValid reports whether the type is one of the four known codes.
func (dt DepType) IsValid() bool {
	switch dt {
	case FinishToStart, StartToStart, FinishToFinish, StartToFinish:
		return true
	default:
		return false
	}
}

// LongName returns the human-readable name for the code.
func (dt DepType) LongName() string {
	switch dt {
	case FinishToStart:
		return "Finish to Start"
	case StartToStart:
		return "Start to Start"
	case FinishToFinish:
		return "Finish to Finish"
	case StartToFinish:
		return "Start to Finish"
	default:
		return string(dt)
	}
}

// ConstrainedByFinish reports whether the predecessor's finish boundary
// drives this edge (FS and FF edges).
func (dt DepType) ConstrainedByFinish() bool {
	return dt == FinishToStart || dt == FinishToFinish
}

// ConstrainsStart reports whether the edge constrains the successor's
// start boundary (FS and SS edges).
func (dt DepType) ConstrainsStart() bool {
	return dt == FinishToStart || dt == StartToStart
}
