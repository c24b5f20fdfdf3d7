//go:build !opencv

package imaging

import (
	"errors"
	"testing"
)

func TestReaderStub(t *testing.T) {
	r := NewReader()
	if r.Available() {
		t.Error("Available() = true without opencv")
	}
	if _, _, err := r.Dimensions("/a.jpg"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Dimensions() error = %v, want %v", err, ErrUnavailable)
	}
}
