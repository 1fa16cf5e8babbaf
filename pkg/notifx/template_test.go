package notifx_test

import (
	"strings"
	"testing"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/notifx"
)

func TestTemplateRegistryRenders(t *testing.T) {
	reg := notifx.NewTemplateRegistry()
	if err := reg.Register("welcome", "<p>Hello {{.Name}}</p>"); err != nil {
		t.Fatalf("register: %v", err)
	}

	body, err := reg.Render("welcome", map[string]string{"Name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(body, "Hello Ada") {
		t.Fatalf("body: got %q", body)
	}
}

func TestTemplateRegistryUnknownName(t *testing.T) {
	reg := notifx.NewTemplateRegistry()
	if _, err := reg.Render("missing", nil); err == nil {
		t.Fatal("expected error for unregistered template")
	}
}

func TestTemplateRegistryRejectsBadTemplate(t *testing.T) {
	reg := notifx.NewTemplateRegistry()
	if err := reg.Register("broken", "{{.Name"); err == nil {
		t.Fatal("expected parse error")
	}
}
