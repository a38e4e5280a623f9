package helpers

import (
	"errors"
	"testing"
	"time"

	"quote-board/src/logger"
)

func TestFetchError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewFetchError("twse request", cause)

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to survive errors.Is")
	}

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Error("expected errors.As to find FetchError")
	}
}

func TestDatabaseError_Unwrap(t *testing.T) {
	cause := errors.New("ping timeout")
	err := NewDatabaseError("postgres ping", cause)

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to survive errors.Is")
	}

	var de *DatabaseError
	if !errors.As(err, &de) {
		t.Error("expected errors.As to find DatabaseError")
	}
}

func TestFieldAbsentError_Message(t *testing.T) {
	err := NewFieldAbsentError("2330.TW", "prev_close")
	if err.Error() != "2330.TW: field prev_close absent" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestRetryWithBackoff_SucceedsMidway(t *testing.T) {
	log := logger.NewLogger("test")

	calls := 0
	err := RetryWithBackoff(log, "op", 3, time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success on retry, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestRetryWithBackoff_Exhausted(t *testing.T) {
	log := logger.NewLogger("test")

	cause := errors.New("permanent")
	err := RetryWithBackoff(log, "op", 2, time.Millisecond, func() error { return cause })

	if err == nil {
		t.Fatal("expected failure after exhaustion")
	}
	if !errors.Is(err, cause) {
		t.Error("expected last error preserved as cause")
	}
}
