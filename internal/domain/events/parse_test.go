package events

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseChatMessage(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		msg, err := Parse([]byte(`{"type":"chat-message","text":"hola"}`), Limits{})
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		chat, ok := msg.(ChatMessage)
		if !ok {
			t.Fatalf("unexpected message type %T", msg)
		}
		if chat.Text != "hola" {
			t.Errorf("unexpected text: %q", chat.Text)
		}
	})

	t.Run("empty text dropped", func(t *testing.T) {
		_, err := Parse([]byte(`{"type":"chat-message","text":""}`), Limits{})
		if err == nil {
			t.Fatal("expected drop for empty text")
		}
		if got := DropReason(err); got != "empty-text" {
			t.Errorf("unexpected drop reason: %q", got)
		}
	})

	t.Run("truncated to exactly the limit", func(t *testing.T) {
		long := strings.Repeat("x", 50)
		raw, _ := json.Marshal(map[string]string{"type": TypeChatMessage, "text": long})

		msg, err := Parse(raw, Limits{MaxChatLength: 10})
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		chat := msg.(ChatMessage)
		if len(chat.Text) != 10 {
			t.Errorf("text length = %d, want 10", len(chat.Text))
		}
	})

	t.Run("truncation preserves multi-byte runes", func(t *testing.T) {
		raw, _ := json.Marshal(map[string]string{"type": TypeChatMessage, "text": strings.Repeat("ü", 20)})

		msg, err := Parse(raw, Limits{MaxChatLength: 5})
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		chat := msg.(ChatMessage)
		if got := []rune(chat.Text); len(got) != 5 {
			t.Errorf("rune length = %d, want 5", len(got))
		}
	})
}

func TestParseChatImage(t *testing.T) {
	t.Run("oversized dropped entirely", func(t *testing.T) {
		raw, _ := json.Marshal(map[string]string{"type": TypeChatImage, "image": strings.Repeat("a", 100)})

		_, err := Parse(raw, Limits{MaxImageBytes: 64})
		if err == nil {
			t.Fatal("expected drop for oversized image")
		}
		if got := DropReason(err); got != "oversized-image" {
			t.Errorf("unexpected drop reason: %q", got)
		}
	})

	t.Run("within limit passes unmodified", func(t *testing.T) {
		msg, err := Parse([]byte(`{"type":"chat-image","image":"base64data"}`), Limits{})
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if msg.(ChatImage).Image != "base64data" {
			t.Error("image payload was modified")
		}
	})
}

func TestParseSignal(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		msg, err := Parse([]byte(`{"type":"signal","target":"peer-1","signal":{"sdp":"offer"}}`), Limits{})
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		sig := msg.(Signal)
		if sig.Target != "peer-1" {
			t.Errorf("unexpected target: %q", sig.Target)
		}
		if string(sig.Signal) != `{"sdp":"offer"}` {
			t.Errorf("signal payload was modified: %s", sig.Signal)
		}
	})

	t.Run("missing target dropped", func(t *testing.T) {
		_, err := Parse([]byte(`{"type":"signal","signal":{"sdp":"offer"}}`), Limits{})
		if got := DropReason(err); got != "missing-target" {
			t.Errorf("unexpected drop reason: %q", got)
		}
	})

	t.Run("oversized payload dropped", func(t *testing.T) {
		big, _ := json.Marshal(strings.Repeat("a", 200))
		raw, _ := json.Marshal(map[string]json.RawMessage{
			"type":   json.RawMessage(`"signal"`),
			"target": json.RawMessage(`"peer-1"`),
			"signal": big,
		})

		_, err := Parse(raw, Limits{MaxSignalBytes: 100})
		if got := DropReason(err); got != "oversized-signal" {
			t.Errorf("unexpected drop reason: %q", got)
		}
	})
}

func TestParseTranslatedMessage(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		msg, err := Parse([]byte(`{"type":"translated-message","original":"hallo","translated":"hello","sourceLang":"de"}`), Limits{})
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		tm := msg.(TranslatedMessage)
		if tm.SourceLang != "de" {
			t.Errorf("unexpected source language: %q", tm.SourceLang)
		}
	})

	t.Run("unsupported language dropped", func(t *testing.T) {
		_, err := Parse([]byte(`{"type":"translated-message","original":"a","translated":"b","sourceLang":"xx"}`), Limits{})
		if got := DropReason(err); got != "bad-language" {
			t.Errorf("unexpected drop reason: %q", got)
		}
	})

	t.Run("both texts truncated", func(t *testing.T) {
		raw, _ := json.Marshal(map[string]string{
			"type":       TypeTranslatedMessage,
			"original":   strings.Repeat("a", 30),
			"translated": strings.Repeat("b", 30),
			"sourceLang": "es",
		})

		msg, err := Parse(raw, Limits{MaxChatLength: 8})
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		tm := msg.(TranslatedMessage)
		if len(tm.Original) != 8 || len(tm.Translated) != 8 {
			t.Errorf("texts not truncated: %d/%d", len(tm.Original), len(tm.Translated))
		}
	})
}

func TestParseCard(t *testing.T) {
	vocab := make([]string, 50)
	for i := range vocab {
		vocab[i] = strings.Repeat("w", 600)
	}
	raw, _ := json.Marshal(map[string]any{
		"type":       TypeCard,
		"category":   "travel",
		"topic":      "airports",
		"prompt":     "describe your last trip",
		"vocabulary": vocab,
	})

	msg, err := Parse(raw, Limits{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	card := msg.(Card)
	if len(card.Vocabulary) != maxVocabularyItems {
		t.Errorf("vocabulary length = %d, want %d", len(card.Vocabulary), maxVocabularyItems)
	}
	for _, w := range card.Vocabulary {
		if len([]rune(w)) > maxCardFieldLength {
			t.Errorf("vocabulary item not truncated: %d runes", len([]rune(w)))
		}
	}
}

func TestParseTimerEvent(t *testing.T) {
	t.Run("valid switch", func(t *testing.T) {
		msg, err := Parse([]byte(`{"type":"timer-event","event":"switch","duration":300,"newLanguage":"fr"}`), Limits{})
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		te := msg.(TimerEvent)
		if te.Event != TimerSwitch || te.Duration != 300 || te.NewLanguage != "fr" {
			t.Errorf("unexpected timer event: %+v", te)
		}
	})

	t.Run("unknown kind dropped", func(t *testing.T) {
		_, err := Parse([]byte(`{"type":"timer-event","event":"pause"}`), Limits{})
		if got := DropReason(err); got != "bad-timer-event" {
			t.Errorf("unexpected drop reason: %q", got)
		}
	})

	t.Run("bad language dropped", func(t *testing.T) {
		_, err := Parse([]byte(`{"type":"timer-event","event":"switch","newLanguage":"klingon"}`), Limits{})
		if got := DropReason(err); got != "bad-language" {
			t.Errorf("unexpected drop reason: %q", got)
		}
	})
}

func TestParseMuteToggle(t *testing.T) {
	msg, err := Parse([]byte(`{"type":"mute-toggle","muted":true}`), Limits{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !msg.(MuteToggle).Muted {
		t.Error("muted flag not parsed")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	cases := map[string]struct {
		raw    string
		reason string
	}{
		"not json":        {raw: `]]]`, reason: "malformed"},
		"unknown type":    {raw: `{"type":"dance"}`, reason: "unknown-type"},
		"no type":         {raw: `{"text":"hi"}`, reason: "unknown-type"},
		"mistyped field":  {raw: `{"type":"chat-message","text":42}`, reason: "malformed"},
		"mistyped toggle": {raw: `{"type":"mute-toggle","muted":"yes"}`, reason: "malformed"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tc.raw), Limits{})
			if err == nil {
				t.Fatal("expected a drop")
			}
			if got := DropReason(err); got != tc.reason {
				t.Errorf("drop reason = %q, want %q", got, tc.reason)
			}
		})
	}
}
