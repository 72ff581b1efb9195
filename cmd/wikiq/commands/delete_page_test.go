package commands

import (
	"strings"
	"testing"

	"wikiq/pkg/confluence"
)

func resetDeletePageFlags() {
	deletePageSpace, deletePageProject = "", ""
	deletePagePurge = false
	deletePageYes = true
}

func TestDeletePageByTitle(t *testing.T) {
	useTempConfig(t)
	resetDeletePageFlags()
	defer resetDeletePageFlags()

	mc := confluence.NewMockClient()
	mc.AddPage("42", "DOCS", "Old Notes", "")

	out := captureStdout(t, func() {
		withMockClient(t, mc, func() {
			if err := runDeletePage(nil, []string{"Old Notes"}); err != nil {
				t.Fatalf("delete: %v", err)
			}
		})
	})

	if !strings.Contains(out, "Moved 'Old Notes' (ID: 42) to the trash") {
		t.Fatalf("unexpected output: %s", out)
	}
	if len(mc.DeleteCalls) != 1 || mc.DeleteCalls[0] != "42" {
		t.Fatalf("expected delete of 42, got %v", mc.DeleteCalls)
	}
}

func TestDeletePagePurge(t *testing.T) {
	useTempConfig(t)
	resetDeletePageFlags()
	defer resetDeletePageFlags()
	deletePagePurge = true

	mc := confluence.NewMockClient()
	mc.AddPage("42", "DOCS", "Old Notes", "")

	out := captureStdout(t, func() {
		withMockClient(t, mc, func() {
			if err := runDeletePage(nil, []string{"42"}); err != nil {
				t.Fatalf("purge: %v", err)
			}
			err := runDeletePage(nil, []string{"Old Notes"})
			if err == nil || !strings.Contains(err.Error(), "--purge needs a page ID") {
				t.Fatalf("expected id error, got %v", err)
			}
		})
	})
	if !strings.Contains(out, "Purged page 42") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestDeletePageNotFound(t *testing.T) {
	useTempConfig(t)
	resetDeletePageFlags()
	defer resetDeletePageFlags()

	withMockClient(t, confluence.NewMockClient(), func() {
		err := runDeletePage(nil, []string{"Missing"})
		if err == nil || !strings.Contains(err.Error(), "page 'Missing' not found in space 'DOCS'") {
			t.Fatalf("expected not found error, got %v", err)
		}
	})
}
