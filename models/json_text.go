package models

import (
	"database/sql/driver"
	"encoding/json"
)

// SubjectList is a set of subject names persisted as JSON text. Reads never
// fail: absent or malformed column values decode to an empty list.
type SubjectList []string

func (s SubjectList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *SubjectList) Scan(value any) error {
	*s = DecodeSubjects(value)
	return nil
}

func (s SubjectList) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// DecodeSubjects parses a stored subject list, degrading to an empty list.
func DecodeSubjects(value any) SubjectList {
	raw, ok := rawBytes(value)
	if !ok || len(raw) == 0 {
		return SubjectList{}
	}
	var subjects []string
	if err := json.Unmarshal(raw, &subjects); err != nil || subjects == nil {
		return SubjectList{}
	}
	return SubjectList(subjects)
}

// OpaqueJSON holds a JSON document the server stores but never interprets.
type OpaqueJSON json.RawMessage

var emptyObject = []byte("{}")

func (o OpaqueJSON) Value() (driver.Value, error) {
	if len(o) == 0 {
		return string(emptyObject), nil
	}
	return string(o), nil
}

func (o *OpaqueJSON) Scan(value any) error {
	raw, ok := rawBytes(value)
	if !ok || !json.Valid(raw) {
		*o = OpaqueJSON(emptyObject)
		return nil
	}
	*o = append(OpaqueJSON(nil), raw...)
	return nil
}

func (o OpaqueJSON) MarshalJSON() ([]byte, error) {
	if len(o) == 0 {
		return emptyObject, nil
	}
	return o, nil
}

func (o *OpaqueJSON) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = OpaqueJSON(emptyObject)
		return nil
	}
	*o = append(OpaqueJSON(nil), data...)
	return nil
}

func rawBytes(value any) ([]byte, bool) {
	switch v := value.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}
