package feed

import (
	"errors"
	"regexp"
	"strings"
	"testing"
)

var firestoreIDAlphabet = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func TestLinkID_DeterministicAndCollisionFree(t *testing.T) {
	corpus := []string{
		"https://www.ufsm.br/noticias/edital-monitoria",
		"https://www.ufsm.br/noticias/edital-monitoria/",
		"https://www.ufsm.br/noticias/edital-monitoria?page=2",
		"https://www.ufsm.br/noticias/edital-monitoria#anexo",
		"http://www.ufsm.br/noticias/edital-monitoria",
		"https://WWW.UFSM.BR/noticias/edital-monitoria",
		"https://www.ufsm.br/noticias/seleção-bolsas",
		"https://www.ufsm.br/noticias/a/b/c/d",
		"https://www.ufsm.br/?p=1",
		"https://www.ufsm.br/?p=11",
		"https://www.ufsm.br/" + strings.Repeat("x", 2000),
		"https://www.ufsm.br/" + strings.Repeat("x", 2001),
	}

	seen := make(map[string]string, len(corpus))
	for _, link := range corpus {
		id, err := LinkID(link)
		if err != nil {
			t.Fatalf("LinkID(%q) returned error: %v", link, err)
		}

		again, _ := LinkID(link)
		if id != again {
			t.Errorf("Expected deterministic id for %q, got %s and %s", link, id, again)
		}

		if !firestoreIDAlphabet.MatchString(id) {
			t.Errorf("Id %q contains characters outside [A-Za-z0-9_-]", id)
		}
		if id == "." || id == ".." || (strings.HasPrefix(id, "__") && strings.HasSuffix(id, "__")) {
			t.Errorf("Id %q is reserved", id)
		}
		if len(id) > 1500 {
			t.Errorf("Id for %d-byte link is %d bytes", len(link), len(id))
		}

		if other, ok := seen[id]; ok {
			t.Errorf("Collision between %q and %q", other, link)
		}
		seen[id] = link
	}
}

func TestLinkID_TrimsWhitespace(t *testing.T) {
	a, _ := LinkID("https://www.ufsm.br/x")
	b, _ := LinkID("  https://www.ufsm.br/x\n")
	if a != b {
		t.Errorf("Expected surrounding whitespace to be ignored, got %s and %s", a, b)
	}
}

func TestLinkID_Empty(t *testing.T) {
	if _, err := LinkID("   "); !errors.Is(err, ErrEmptyLink) {
		t.Errorf("Expected ErrEmptyLink, got: %v", err)
	}
}

func TestDecodeLinkID(t *testing.T) {
	link := "https://www.ufsm.br/noticias/resultado?id=42&tipo=bolsa"
	id, err := LinkID(link)
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := DecodeLinkID(id)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if decoded != link {
		t.Errorf("Expected %s, got %s", link, decoded)
	}

	long, _ := LinkID("https://www.ufsm.br/" + strings.Repeat("y", 3000))
	if !strings.HasPrefix(long, "h_") {
		t.Fatalf("Expected hashed id for long link, got prefix %s", long[:4])
	}
	if _, err := DecodeLinkID(long); err == nil {
		t.Error("Expected error decoding hashed id")
	}
}
