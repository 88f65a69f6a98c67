package repository

import (
	"errors"
	"fmt"
)

// ErrRequestFailed はネットワークエラーと2xx以外の応答をまとめて表す
var ErrRequestFailed = errors.New("request failed")

var ErrNotAuthenticated = errors.New("not authenticated")

// RequestError は失敗したリクエストの詳細。原因によらずerrors.IsでErrRequestFailedに一致する
type RequestError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: %s: status %d", e.Op, e.URL, ErrRequestFailed, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.URL, ErrRequestFailed, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}
