package wal

import (
	"github.com/arthur-debert/mirage/pkg/errors"
	"github.com/goccy/go-json"
)

// Encode serializes a journal. Indented output keeps wal.json readable
// for manual inspection after a failed run.
func Encode(j *Journal, indent bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(j, "", "  ")
	} else {
		data, err = json.Marshal(j)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode journal")
	}
	return append(data, '\n'), nil
}

// Decode parses a serialized journal.
func Decode(data []byte) (*Journal, error) {
	j := NewJournal()
	if err := json.Unmarshal(data, j); err != nil {
		return nil, errors.Wrap(err, errors.ErrCorruptJournal, "failed to decode journal")
	}
	if j.Actions == nil {
		j.Actions = []Action{}
	}
	if j.Redirections == nil {
		j.Redirections = map[string]string{}
	}
	return j, nil
}
