package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("row missing")
	err := Wrap(CodeNotFound, cause, "load order")

	if err.Code() != CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %s", err.Code())
	}
	if err.Unwrap() != cause {
		t.Fatal("expected cause to be preserved")
	}
	wrapped := fmt.Errorf("outer: %w", err)
	if As(wrapped) == nil {
		t.Fatal("expected As to find typed error through wrapping")
	}
}

func TestWrapNilCauseBehavesLikeNew(t *testing.T) {
	err := Wrap(CodeValidation, nil, "empty cart")
	if err.Unwrap() != nil {
		t.Fatal("expected nil cause")
	}
	if err.Error() != "VALIDATION_ERROR: empty cart" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestMetadataFor(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeStateConflict, http.StatusUnprocessableEntity},
		{Code("unknown"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Fatalf("code %s: expected %d, got %d", tc.code, tc.status, got)
		}
	}
}

func TestDumpWalksChain(t *testing.T) {
	err := Wrap(CodeDependency, fmt.Errorf("dial tcp: refused"), "persist order")
	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", dump.Code)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected full chain, got %v", dump.Chain)
	}
}
