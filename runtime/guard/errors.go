package guard

import "errors"

var (
	ErrUnsupportedLanguage = errors.New("unsupported guard language")
	ErrCompile             = errors.New("guard compile error")
	ErrEvaluation          = errors.New("guard evaluation error")
)
