package query

import (
	"errors"
	"fmt"
)

var ErrMissingToken = errors.New("missing token")

type UnexpectedTokenError struct {
	Token Token
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("unexpected token %s", e.Token)
}
