package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestIsKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
		want bool
	}{
		{
			name: "direct match",
			err:  New(Query, "ORA-00942: table or view does not exist"),
			kind: Query,
			want: true,
		},
		{
			name: "wrapped match",
			err:  fmt.Errorf("execute: %w", New(ExternalTool, "editor exited 1")),
			kind: ExternalTool,
			want: true,
		},
		{
			name: "kind mismatch",
			err:  New(Configuration, "EDITOR not set"),
			kind: Query,
			want: false,
		},
		{
			name: "plain error",
			err:  stderrors.New("boom"),
			kind: Query,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsKind(tt.err, tt.kind); got != tt.want {
				t.Errorf("IsKind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	e := Wrap(Query, "query failed", stderrors.New("ORA-01017"))
	want := "query: query failed: ORA-01017"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
	if stderrors.Unwrap(e) == nil {
		t.Error("Unwrap() returned nil for wrapped error")
	}
}
