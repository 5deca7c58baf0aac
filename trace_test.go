package sqlitekit

import "testing"

func TestTraceReceivesStatementEvents(t *testing.T) {
	c := mustOpen(t, Config{})
	var sqls []string
	if err := c.Trace(TraceOptions(TraceStatement), func(info TraceInfo) {
		sqls = append(sqls, info.SQL)
	}); err != nil {
		t.Fatalf("Trace: %v", err)
	}

	if _, err := c.Exec(`CREATE TABLE t(a)`); err != nil {
		t.Fatalf("CREATE TABLE: %v", err)
	}
	found := false
	for _, s := range sqls {
		if s == "CREATE TABLE t(a)" {
			found = true
		}
	}
	if !found {
		t.Fatalf("trace sink never saw the CREATE TABLE statement: %v", sqls)
	}
}

func TestTraceProfileReportsDuration(t *testing.T) {
	c := mustOpen(t, Config{})
	var sawProfile bool
	if err := c.Trace(TraceOptions(TraceProfile), func(info TraceInfo) {
		if info.Event == TraceProfile {
			sawProfile = true
		}
	}); err != nil {
		t.Fatalf("Trace: %v", err)
	}
	if _, err := c.Exec(`CREATE TABLE t(a)`); err != nil {
		t.Fatalf("CREATE TABLE: %v", err)
	}
	if !sawProfile {
		t.Fatalf("trace sink never received a TraceProfile event")
	}
}

func TestTraceZeroOptionsDisablesTracing(t *testing.T) {
	c := mustOpen(t, Config{})
	called := false
	if err := c.Trace(TraceOptions(TraceStatement), func(info TraceInfo) { called = true }); err != nil {
		t.Fatalf("Trace: %v", err)
	}
	if err := c.Trace(0, nil); err != nil {
		t.Fatalf("Trace(0, nil): %v", err)
	}
	if _, err := c.Exec(`CREATE TABLE t(a)`); err != nil {
		t.Fatalf("CREATE TABLE: %v", err)
	}
	if called {
		t.Fatalf("trace sink fired after Trace(0, nil) disabled tracing")
	}
}
