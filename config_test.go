package sqlitekit

import "testing"

func TestTransactionKindString(t *testing.T) {
	cases := []struct {
		k    TransactionKind
		want string
	}{
		{Deferred, "DEFERRED"},
		{Immediate, "IMMEDIATE"},
		{Exclusive, "EXCLUSIVE"},
	}
	for _, c := range cases {
		if got := c.k.String(); got != c.want {
			t.Errorf("%d.String() = %q; want %q", c.k, got, c.want)
		}
	}
}

func TestBusyModeConstructors(t *testing.T) {
	if m := ImmediateBusyError(); m.Kind != "immediate_error" {
		t.Fatalf("ImmediateBusyError().Kind = %q", m.Kind)
	}
	if m := BusyTimeout(250); m.Kind != "timeout" || m.Timeout != 250 {
		t.Fatalf("BusyTimeout(250) = %+v", m)
	}
	called := false
	m := BusyCallback(func(attempts int) bool { called = true; return attempts < 1 })
	if m.Kind != "callback" || m.Callback == nil {
		t.Fatalf("BusyCallback() = %+v", m)
	}
	if !m.Callback(0) {
		t.Fatalf("callback(0) = false; want true")
	}
	if !called {
		t.Fatalf("callback was never invoked")
	}
}

func TestTraceOptionsHas(t *testing.T) {
	opts := TraceOptions(TraceStatement)
	if !opts.Has(TraceStatement) {
		t.Fatalf("opts.Has(TraceStatement) = false")
	}
	if opts.Has(TraceProfile) {
		t.Fatalf("opts.Has(TraceProfile) = true; want false")
	}
	opts = TraceOptions(TraceStatement | TraceProfile)
	if !opts.Has(TraceStatement) || !opts.Has(TraceProfile) {
		t.Fatalf("combined opts.Has = %v/%v; want true/true", opts.Has(TraceStatement), opts.Has(TraceProfile))
	}
	var zero TraceOptions
	if zero.Has(TraceStatement) {
		t.Fatalf("zero TraceOptions.Has(TraceStatement) = true")
	}
}
