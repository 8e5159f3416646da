package feed

import (
	"strings"
	"testing"
)

var vetKeywords = []string{"veterinária", "medicina veterinária", "hospital veterinário"}
var editalKeywords = []string{"edital", "seleção", "bolsa", "resultado", "retificação", "estágio", "monitoria"}
var blacklist = []string{"mestrado", "doutorado", "pós-graduação"}

func testRules() *Rules {
	return &Rules{
		RequireAny: []KeywordGroup{
			{Name: "vet", Keywords: vetKeywords},
			{Name: "edital", Keywords: editalKeywords},
		},
		Blacklist: blacklist,
	}
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func TestFilterer_Classify(t *testing.T) {
	filterer := NewFilterer()
	rules := testRules()

	tests := []struct {
		name     string
		item     Item
		accepted bool
	}{
		{"vet topic", Item{Title: "Semana da Medicina Veterinária", Snippet: "Palestras abertas"}, true},
		{"edital topic", Item{Title: "Novo EDITAL publicado", Snippet: "Confira"}, true},
		{"topic only in snippet", Item{Title: "Aviso", Snippet: "Resultado final da seleção"}, true},
		{"topic only in content when snippet empty", Item{Title: "Aviso", Content: "<p>bolsa</p>"}, true},
		{"no topic", Item{Title: "Festa junina no campus", Snippet: "Venha participar"}, false},
		{"blacklist overrides vet", Item{Title: "Mestrado em Medicina Veterinária", Snippet: "Inscrições"}, false},
		{"blacklist overrides edital", Item{Title: "Edital de seleção", Snippet: "Programa de pós-graduação"}, false},
		{"blacklist without topic", Item{Title: "Defesa de doutorado", Snippet: ""}, false},
		{"accent mismatch without folding", Item{Title: "Resultado da selecao", Snippet: ""}, true},
		{"only accent-free keyword variant", Item{Title: "Selecao aberta", Snippet: ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accepted, reason := filterer.Classify(tt.item, rules)
			if accepted != tt.accepted {
				t.Errorf("Expected accepted=%v, got %v (reason: %s)", tt.accepted, accepted, reason)
			}
			if !accepted && reason == "" {
				t.Error("Expected a filter reason for rejected item")
			}
			if accepted && reason != "" {
				t.Errorf("Expected empty reason for accepted item, got: %s", reason)
			}
		})
	}
}

// The classifier must agree with the plain definition: (vet OR edital) AND NOT blacklist.
func TestFilterer_Classify_MatchesDefinition(t *testing.T) {
	filterer := NewFilterer()
	rules := testRules()

	titles := []string{
		"Edital", "Bolsa de estágio", "Mestrado", "Hospital Veterinário", "Monitoria de doutorado",
		"Retificação do resultado", "Cardápio do RU", "PÓS-GRADUAÇÃO em medicina veterinária", "",
	}
	snippets := []string{"", "seleção aberta", "curso de mestrado", "aula prática", "veterinária"}

	for _, title := range titles {
		for _, snippet := range snippets {
			item := Item{Title: title, Snippet: snippet}
			fullText := strings.ToLower(title + " " + snippet)
			expected := (containsAny(fullText, vetKeywords) || containsAny(fullText, editalKeywords)) &&
				!containsAny(fullText, blacklist)

			accepted, _ := filterer.Classify(item, rules)
			if accepted != expected {
				t.Errorf("Classify(%q, %q) = %v, expected %v", title, snippet, accepted, expected)
			}
		}
	}
}

func TestFilterer_Classify_FoldAccents(t *testing.T) {
	filterer := NewFilterer()
	rules := testRules()
	rules.FoldAccents = true

	accepted, _ := filterer.Classify(Item{Title: "Selecao aberta para estagio"}, rules)
	if !accepted {
		t.Error("Expected accent-free text to match accented keywords when folding")
	}

	accepted, _ = filterer.Classify(Item{Title: "Edital de pos-graduacao"}, rules)
	if accepted {
		t.Error("Expected accent-free text to hit accented blacklist when folding")
	}
}

func TestFilterer_Classify_EmptyKeywordNeverMatches(t *testing.T) {
	filterer := NewFilterer()
	rules := &Rules{
		RequireAny: []KeywordGroup{{Name: "empty", Keywords: []string{""}}},
	}

	accepted, _ := filterer.Classify(Item{Title: "Qualquer coisa"}, rules)
	if accepted {
		t.Error("Expected empty keyword not to match")
	}
}

func TestFilterer_Run(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Edital de monitoria"},
		{Title: "Festa no campus"},
		{Title: "Bolsa de doutorado"},
	}

	result := filterer.Run(items, testRules())

	if len(result) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(result))
	}

	if result[0].IsFiltered {
		t.Errorf("First item should not be filtered")
	}
	if !result[1].IsFiltered || result[1].FilterReason == "" {
		t.Errorf("Second item should be filtered with a reason")
	}
	if !result[2].IsFiltered || !strings.Contains(result[2].FilterReason, "doutorado") {
		t.Errorf("Third item should be filtered by blacklist, got reason: %s", result[2].FilterReason)
	}
}
