package stacktrace

import "testing"

func TestInternalPaths(t *testing.T) {
	// Arrange
	stack := []byte(`goroutine 1 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/passgate/internal/pkg/goroutine.(*Manager).Go.func1()
	/app/internal/pkg/goroutine/goroutine.go:61 +0x85
github.com/shandysiswandi/passgate/internal/passcode/inbound.(*Sweeper).Run(...)
	/app/internal/passcode/inbound/sweeper.go:40 +0x1a
`)

	// Act
	got := InternalPaths(stack)

	// Assert
	want := []string{
		"internal/pkg/goroutine/goroutine.go:61",
		"internal/passcode/inbound/sweeper.go:40",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d]=%q, want %q", i, got[i], want[i])
		}
	}
}
