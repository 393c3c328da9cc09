package testfixtures

import (
	"reflect"
	"testing"
)

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("token")

	if got := gen.Last(); got != "" {
		t.Fatalf("expected no last id before Next, got %q", got)
	}
	first := gen.Next()
	second := gen.NextFunc()()

	if first != "token-1" || second != "token-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
	if gen.Last() != "token-2" {
		t.Fatalf("expected last token-2, got %q", gen.Last())
	}
	if got := gen.Issued(); !reflect.DeepEqual(got, []string{"token-1", "token-2"}) {
		t.Fatalf("unexpected issued list %v", got)
	}
}

func TestIDGeneratorDefaultPrefix(t *testing.T) {
	if got := NewIDGenerator("").Next(); got != "id-1" {
		t.Fatalf("expected id-1, got %q", got)
	}
}
