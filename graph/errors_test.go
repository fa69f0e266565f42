package graph

import (
	"context"
	"errors"
	"testing"
)

func TestCancellationErrorUnwrapsCause(t *testing.T) {
	cause := context.Canceled
	err := &CancellationError{Cause: cause}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("errors.Is(err, context.Canceled) = false, want true")
	}
}

func TestErrorMessagesMentionRelevantDetail(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"InvalidArgument", &InvalidArgumentError{Message: "globalCap must be >= 1"}},
		{"InvalidState", &InvalidStateError{NodeID: 3, From: Running}},
		{"Cycle", &CycleError{Remaining: []int64{1, 2}}},
		{"Cancellation", &CancellationError{Cause: context.Canceled}},
		{"Timeout", &TimeoutError{NodeID: 9}},
	}
	for _, tc := range cases {
		if tc.err.Error() == "" {
			t.Errorf("%s: Error() returned empty string", tc.name)
		}
	}
}
