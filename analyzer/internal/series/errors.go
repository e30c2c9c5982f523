package series

import (
	"errors"
	"fmt"
)

// Ошибки оси времени
var (
	ErrInvalidTime      = errors.New("time is not a finite number")
	ErrNegativeTime     = errors.New("time is negative")
	ErrTimeNotMonotonic = errors.New("time axis is not monotonically non-decreasing")
	ErrInvalidAmplitude = errors.New("amplitude is not a finite number")
)

// MissingColumnError возвращается при загрузке, если в заголовке нет обязательной колонки
type MissingColumnError struct {
	Column string
	Header []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column %q is missing (header: %v)", e.Column, e.Header)
}

// ParseError описывает некорректную строку входной таблицы
type ParseError struct {
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %q: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
