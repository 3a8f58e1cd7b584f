package provider

import (
	"context"
	"errors"
	"testing"
)

type backendOutput struct {
	Data   string
	closed bool
}

func (b *backendOutput) Close() error {
	b.closed = true
	return nil
}

type stubBackend struct {
	available bool
	closed    bool
	out       *backendOutput
	err       error
}

func (s *stubBackend) Name() string                       { return "backend" }
func (s *stubBackend) IsAvailable(_ context.Context) bool { return s.available }
func (s *stubBackend) Execute(_ context.Context, in string) (*backendOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.out = &backendOutput{Data: "result:" + in}
	return s.out, nil
}
func (s *stubBackend) Close(_ context.Context) error {
	s.closed = true
	return nil
}

func adaptLen(backend *stubBackend, mapInErr, mapOutErr error) RequestResponse[int, int] {
	return Adapt[int, int, string, *backendOutput](
		backend,
		"domain",
		func(_ context.Context, n int) (string, error) {
			if mapInErr != nil {
				return "", mapInErr
			}
			return string(rune('a' + n)), nil
		},
		func(out *backendOutput) (int, error) {
			if mapOutErr != nil {
				return 0, mapOutErr
			}
			return len(out.Data), nil
		},
	)
}

func TestAdapt(t *testing.T) {
	errIn, errOut, errBackend := errors.New("in"), errors.New("out"), errors.New("backend")

	tests := []struct {
		name       string
		backendErr error
		mapInErr   error
		mapOutErr  error
		want       int
		wantErr    error
		wantClosed bool
	}{
		{"mapped", nil, nil, nil, len("result:c"), nil, false},
		{"map in error", nil, errIn, nil, 0, errIn, false},
		{"backend error", errBackend, nil, nil, 0, errBackend, false},
		{"map out error closes output", nil, nil, errOut, 0, errOut, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			backend := &stubBackend{available: true, err: tc.backendErr}
			adapted := adaptLen(backend, tc.mapInErr, tc.mapOutErr)

			got, err := adapted.Execute(context.Background(), 2)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
			if backend.out != nil && backend.out.closed != tc.wantClosed {
				t.Errorf("output closed = %v, want %v", backend.out.closed, tc.wantClosed)
			}
		})
	}
}

func TestAdapt_Delegation(t *testing.T) {
	backend := &stubBackend{available: false}
	adapted := adaptLen(backend, nil, nil)

	if adapted.Name() != "domain" {
		t.Errorf("Name() = %q", adapted.Name())
	}
	if adapted.IsAvailable(context.Background()) {
		t.Error("IsAvailable should delegate to the backend")
	}
	if err := Close(context.Background(), adapted); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !backend.closed {
		t.Error("Close should reach the backend")
	}
}
