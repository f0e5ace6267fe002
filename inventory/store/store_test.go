package store

import "testing"

func TestParseBackendKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw     string
		want    BackendKind
		wantErr bool
	}{
		{raw: "", want: BackendMemory},
		{raw: "memory", want: BackendMemory},
		{raw: "  Postgres  ", want: BackendPostgres},
		{raw: "mysql", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseBackendKind(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parse %q: expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parse %q: unexpected error: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: got %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestNewMemoryBackendSelection(t *testing.T) {
	t.Parallel()

	backend, err := New(BackendMemory, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := backend.(*MemoryBackend); !ok {
		t.Fatalf("unexpected backend type: %T", backend)
	}
}

func TestNewPostgresBackendRequiresDB(t *testing.T) {
	t.Parallel()

	if _, err := New(BackendPostgres, nil); err == nil {
		t.Fatal("expected error for nil db")
	}
}
