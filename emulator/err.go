package emulator

import (
	"errors"

	"github.com/ezrec/vm8/translate"
)

var f = translate.From

var (
	ErrConfigInvalid = errors.New(f("configuration invalid"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d %v", err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrConfigKey reports an unknown configuration key.
type ErrConfigKey string

func (err ErrConfigKey) Error() string {
	return f("unknown configuration key '%v'", string(err))
}
