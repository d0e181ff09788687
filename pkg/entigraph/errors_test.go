package entigraph

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{errors.New("sql: database is locked"), ErrTypeDatabase},
		{errors.New("no such table: entities"), ErrTypeDatabase},
		{fmt.Errorf("failed to begin transaction: %w", errors.New("busy")), ErrTypeDatabase},
		{errors.New("entity not found"), ErrTypeNotFound},
		{errors.New("threshold must be in (0, 1], got 1.5"), ErrTypeValidation},
		{errors.New("days must be positive, got 0"), ErrTypeValidation},
		{errors.New(`unknown importance metric "pagerank" (want degree, betweenness or closeness)`), ErrTypeValidation},
		{errors.New("entity text cannot be empty"), ErrTypeValidation},
		{errors.New("something exploded"), ErrTypeUnknown},
	}

	for _, c := range cases {
		if got := ClassifyError(c.err); got != c.want {
			t.Errorf("ClassifyError(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}
