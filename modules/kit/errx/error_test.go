package errx

import (
	"errors"
	"testing"
)

func TestErrorIsComparesByCodeOnly(t *testing.T) {
	e1 := NewBiz("BIZ_X", "x").WithData("k", "v").WithCause(errors.New("cause1"))
	e2 := NewBiz("BIZ_X", "other msg").WithData("k2", "v2").WithCause(errors.New("cause2"))
	if !errors.Is(e1, e2) {
		t.Fatalf("expected errors.Is to match by code, e1=%v e2=%v", e1, e2)
	}
	if errors.Is(e1, NewBiz("BIZ_Y", "x")) {
		t.Fatalf("expected different codes not to match")
	}
}

func TestBizErrorKeepsCauseWithoutStack(t *testing.T) {
	cause := errors.New("db down")
	err := NewBiz("BIZ_CHARGE_FAIL", "not enough resources").WithCause(cause)
	if got := err.Stack(); got != nil {
		t.Fatalf("business errors must not capture a stack, got=%v", got)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause chain lost, err=%v", err)
	}
}

func TestSysErrorCapturesStackOnce(t *testing.T) {
	cause := errors.New("io timeout")
	sys := NewSys("SYS_DB_UNAVAILABLE", "db unavailable").WithCause(cause)
	if got := sys.Stack(); len(got) == 0 {
		t.Fatalf("system error should capture a stack at first wrap, got=%v", got)
	}

	// Wrapping again must not re-capture: the deeper stack wins.
	sys2 := NewSys("SYS_GATEWAY", "gateway failure").WithCause(sys)
	if got := sys2.Stack(); got != nil {
		t.Fatalf("outer system error re-captured a stack, got=%v", got)
	}
}

func TestDataIsCopied(t *testing.T) {
	err := NewBiz("BIZ_X", "").WithData("k", "v")
	d := err.Data()
	d["k"] = "mutated"
	if got := err.Data()["k"]; got != "v" {
		t.Fatalf("Data() must return a copy; got=%v", got)
	}
}
