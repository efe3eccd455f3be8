package parse

import "testing"

func TestStripFence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"tagged fence", "```json\n[1,2]\n```", "[1,2]"},
		{"untagged fence", "```\n{}\n```", "{}"},
		{"no fence", "  [1,2]  ", "[1,2]"},
		{"fence with surrounding whitespace", "\n\n```json\n[]\n```\n", "[]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := StripFence(tc.input)
			if got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestFlashCards_FrontBackShape(t *testing.T) {
	res := FlashCards(`[{"front":"CPU","back":"Central Processing Unit"},{"front":"RAM","back":"Random Access Memory"}]`)
	if res.Kind != Cards {
		t.Fatalf("Expected Cards, got kind %d", res.Kind)
	}
	if len(res.Cards) != 2 {
		t.Fatalf("Expected 2 cards, got %d", len(res.Cards))
	}
	if res.Cards[0].Front != "CPU" || res.Cards[0].Back != "Central Processing Unit" {
		t.Errorf("Unexpected first card: %+v", res.Cards[0])
	}
}

func TestFlashCards_QuestionAnswerShape(t *testing.T) {
	res := FlashCards("```json\n[{\"question\":\"2+2?\",\"answer\":\"4\"}]\n```")
	if res.Kind != Cards {
		t.Fatalf("Expected Cards, got kind %d", res.Kind)
	}
	if len(res.Cards) != 1 {
		t.Fatalf("Expected 1 card, got %d", len(res.Cards))
	}
	if res.Cards[0].Front != "2+2?" || res.Cards[0].Back != "4" {
		t.Errorf("Expected {2+2?, 4}, got %+v", res.Cards[0])
	}
}

func TestFlashCards_EmptyFieldsNormalized(t *testing.T) {
	res := FlashCards(`[{"front":"","back":""}]`)
	if res.Kind != Cards {
		t.Fatalf("Expected Cards for present-but-empty fields, got kind %d", res.Kind)
	}
	if res.Cards[0].Front != "" || res.Cards[0].Back != "" {
		t.Errorf("Expected empty strings, got %+v", res.Cards[0])
	}
}

func TestFlashCards_Unparseable(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not JSON", "Sure! Here are your flash cards:"},
		{"object not array", `{"front":"a","back":"b"}`},
		{"element missing back", `[{"front":"a"}]`},
		{"mixed valid and invalid", `[{"front":"a","back":"b"},{"question":"c"}]`},
		{"empty string", ""},
		{"truncated JSON", `[{"front":"a","back":"b"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := FlashCards(tc.input)
			if res.Kind != Unparseable {
				t.Errorf("Expected Unparseable, got kind %d", res.Kind)
			}
		})
	}
}

func TestQuizQuestions_BareArray(t *testing.T) {
	res := QuizQuestions(`[{"question":"Capital of France?","options":["Paris","Rome"],"correct":0,"rationale":"Geography basics"}]`)
	if res.Kind != Quiz {
		t.Fatalf("Expected Quiz, got kind %d", res.Kind)
	}
	q := res.Questions[0]
	if q.Question != "Capital of France?" || q.Correct != 0 || q.Rationale != "Geography basics" {
		t.Errorf("Unexpected question: %+v", q)
	}
}

func TestQuizQuestions_WrappedObject(t *testing.T) {
	res := QuizQuestions(`{"questions":[{"question":"Q1","options":["a","b"],"correct":1}]}`)
	if res.Kind != Quiz {
		t.Fatalf("Expected Quiz, got kind %d", res.Kind)
	}
	if len(res.Questions) != 1 || res.Questions[0].Correct != 1 {
		t.Errorf("Unexpected questions: %+v", res.Questions)
	}
}

func TestQuizQuestions_ExplanationFallback(t *testing.T) {
	res := QuizQuestions(`[{"question":"Q","options":["a"],"correct":0,"explanation":"because"}]`)
	if res.Kind != Quiz {
		t.Fatalf("Expected Quiz, got kind %d", res.Kind)
	}
	if res.Questions[0].Rationale != "because" {
		t.Errorf("Expected rationale from explanation field, got %q", res.Questions[0].Rationale)
	}
}

func TestQuizQuestions_CorrectIndexDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing correct", `[{"question":"Q","options":["a","b"]}]`},
		{"negative correct", `[{"question":"Q","options":["a","b"],"correct":-2}]`},
		{"out of range correct", `[{"question":"Q","options":["a","b"],"correct":9}]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := QuizQuestions(tc.input)
			if res.Kind != Quiz {
				t.Fatalf("Expected Quiz, got kind %d", res.Kind)
			}
			if res.Questions[0].Correct != 0 {
				t.Errorf("Expected correct index 0, got %d", res.Questions[0].Correct)
			}
		})
	}
}

func TestQuizQuestions_Unparseable(t *testing.T) {
	tests := []string{
		"here is your quiz",
		`{"data":[]}`,
		"",
	}
	for _, input := range tests {
		if res := QuizQuestions(input); res.Kind != Unparseable {
			t.Errorf("Input %q: expected Unparseable, got kind %d", input, res.Kind)
		}
	}
}
