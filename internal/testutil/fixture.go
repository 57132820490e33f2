package testutil

import "time"

// Fixture targets used by SampleLog.
var (
	FooBar   = Target{Engine: 1, ID: 1, Name: "Foo.bar", Source: "foo.js:10"}
	BazQux   = Target{Engine: 1, ID: 2, Name: "Baz.qux", Source: "baz.js:3"}
	LonelyFn = Target{Engine: 1, ID: 3, Name: "Lonely.fn", Source: "lonely.js:1"}
)

// At returns Epoch plus the given offset.
func At(d time.Duration) time.Time {
	return Epoch.Add(d)
}

// SampleLog returns a small log exercising every grammar: two compiled
// targets with evictions, a failure and a transfer, a target that is only
// queued, and lines the parser drops or rejects.
func SampleLog() []string {
	s, m, h := time.Second, time.Minute, time.Hour
	return []string{
		"Runtime starting",
		EnqueuedLine(FooBar, 1, 1000, 1000, At(0)),
		StartLine(FooBar, 1, At(1*s)),
		DoneLine(FooBar, 1, 100, 4096, 101, At(2*s)),
		FlushLine(101, At(12*s)),
		EnqueuedLine(BazQux, 2, 500, 500, At(30*s)),
		StartLine(BazQux, 2, At(31*s)),
		FailedLine(BazQux, 2, 40, "Maximum compilation count exceeded", At(32*s)),
		EnqueuedLine(FooBar, 2, 3000, 2000, At(1*m)),
		StartLine(FooBar, 2, At(1*m+1*s)),
		DoneLine(FooBar, 2, 250, 8192, 102, At(1*m+3*s)),
		DeoptLine(FooBar, At(2*m)),
		InvalLine(FooBar, "Assumption invalidated", At(2*m+1*s)),
		TransferLine("Foo.bar", "foo.js:10", At(2*m+2*s)),
		EnqueuedLine(LonelyFn, 1, 20, 1000, At(3*m)),
		DequeuedLine(LonelyFn, 1, 20, 1000, "Target inlined", At(3*m+10*s)),
		"[engine] opt done engine=1 id=9 Broken | Tier 1",
		"[engine] opt explode engine=1 id=9 Broken | Tier 1",
		"Unknown.fn(nowhere.js)",
		FlushLine(999, At(4*m)),
		DoneLine(BazQux, 1, 50, 1024, 201, At(1*h+5*s)),
		FlushLine(201, At(1*h+10*s)),
	}
}
