package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ardnew/ndfkit/pkg"
)

func TestVersion_Run(t *testing.T) {
	var buf bytes.Buffer

	if err := (&Version{Short: true}).Run(testContext(t, &buf)); err != nil {
		t.Fatal(err)
	}

	if got := buf.String(); got != pkg.Version+"\n" {
		t.Errorf("short version = %q, want %q", got, pkg.Version+"\n")
	}

	buf.Reset()

	if err := (&Version{}).Run(testContext(t, &buf)); err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(buf.String(), pkg.Name+" "+pkg.Version+" (go") {
		t.Errorf("version = %q", buf.String())
	}
}
