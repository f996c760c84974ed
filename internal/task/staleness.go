package task

import (
	"os"
	"time"
)

// stale applies the staleness rule: a target is stale when its output is
// absent or any declared input has a modification time strictly newer than
// the output's. Inputs are always examined first so a missing prerequisite
// surfaces before the converter would run.
func (e *Engine) stale(t *Target) (bool, error) {
	newest, err := newestInputTime(t)
	if err != nil {
		return false, err
	}

	out, err := os.Stat(t.Output)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, &PrerequisiteError{Target: t.Name, Input: t.Output, Err: err}
	}

	return newest.After(out.ModTime()), nil
}

func newestInputTime(t *Target) (time.Time, error) {
	var newest time.Time
	for _, input := range t.Inputs {
		info, err := os.Stat(input)
		if err != nil {
			return time.Time{}, &PrerequisiteError{Target: t.Name, Input: input, Err: err}
		}
		if mt := info.ModTime(); mt.After(newest) {
			newest = mt
		}
	}
	return newest, nil
}
