package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Limits bounds inbound frame payloads. Zero values are replaced by
// defaults so a partially filled config cannot disable validation.
type Limits struct {
	MaxChatLength  int
	MaxImageBytes  int
	MaxSignalBytes int
}

const (
	DefaultMaxChatLength  = 2000
	DefaultMaxImageBytes  = 1 << 20
	DefaultMaxSignalBytes = 64 << 10

	maxCardFieldLength  = 512
	maxVocabularyItems  = 32
	maxTimerDurationSec = 3600
)

// Language tags accepted on translated messages and timer switches.
var supportedLanguages = []string{
	"en", "es", "fr", "de", "it", "pt", "ru", "ja", "zh", "ko", "ar", "nl", "tr", "pl",
}

var timerKinds = []string{TimerStart, TimerSwitch, TimerEnd}

// DropError wraps every validation failure. Callers drop the frame without
// responding to the sender; Reason feeds the drop counter.
type DropError struct {
	Reason string
	Err    error
}

func (e *DropError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("drop frame (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("drop frame (%s)", e.Reason)
}

func (e *DropError) Unwrap() error { return e.Err }

func dropf(reason string, format string, args ...any) error {
	return &DropError{Reason: reason, Err: fmt.Errorf(format, args...)}
}

func (l Limits) withDefaults() Limits {
	if l.MaxChatLength <= 0 {
		l.MaxChatLength = DefaultMaxChatLength
	}
	if l.MaxImageBytes <= 0 {
		l.MaxImageBytes = DefaultMaxImageBytes
	}
	if l.MaxSignalBytes <= 0 {
		l.MaxSignalBytes = DefaultMaxSignalBytes
	}
	return l
}

// Parse decodes one inbound frame and validates it against lim. The
// returned value is one of the inbound frame structs from types.go,
// already truncated where the protocol truncates rather than rejects.
func Parse(raw []byte, lim Limits) (any, error) {
	lim = lim.withDefaults()

	var base struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &base); err != nil {
		return nil, dropf("malformed", "unmarshal frame: %w", err)
	}

	switch base.Type {
	case TypeChatMessage:
		var m ChatMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, dropf("malformed", "unmarshal chat: %w", err)
		}
		if m.Text == "" {
			return nil, dropf("empty-text", "chat text is empty")
		}
		m.Text = truncate(m.Text, lim.MaxChatLength)
		return m, nil

	case TypeChatImage:
		var m ChatImage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, dropf("malformed", "unmarshal image: %w", err)
		}
		if len(m.Image) > lim.MaxImageBytes {
			return nil, dropf("oversized-image", "image payload %d bytes over limit %d", len(m.Image), lim.MaxImageBytes)
		}
		if m.Image == "" {
			return nil, dropf("empty-image", "image payload is empty")
		}
		return m, nil

	case TypeSignal:
		var m Signal
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, dropf("malformed", "unmarshal signal: %w", err)
		}
		if m.Target == "" {
			return nil, dropf("missing-target", "signal has no target")
		}
		if len(m.Signal) == 0 {
			return nil, dropf("empty-signal", "signal payload is empty")
		}
		if len(m.Signal) > lim.MaxSignalBytes {
			return nil, dropf("oversized-signal", "signal payload %d bytes over limit %d", len(m.Signal), lim.MaxSignalBytes)
		}
		return m, nil

	case TypeMuteToggle:
		var m MuteToggle
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, dropf("malformed", "unmarshal mute toggle: %w", err)
		}
		return m, nil

	case TypeTranslatedMessage:
		var m TranslatedMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, dropf("malformed", "unmarshal translated message: %w", err)
		}
		if m.Original == "" || m.Translated == "" {
			return nil, dropf("empty-text", "translated message missing text")
		}
		if !slices.Contains(supportedLanguages, m.SourceLang) {
			return nil, dropf("bad-language", "unsupported language tag %q", m.SourceLang)
		}
		m.Original = truncate(m.Original, lim.MaxChatLength)
		m.Translated = truncate(m.Translated, lim.MaxChatLength)
		return m, nil

	case TypeCard:
		var m Card
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, dropf("malformed", "unmarshal card: %w", err)
		}
		m.Category = truncate(m.Category, maxCardFieldLength)
		m.Topic = truncate(m.Topic, maxCardFieldLength)
		m.TopicTranslation = truncate(m.TopicTranslation, maxCardFieldLength)
		m.Prompt = truncate(m.Prompt, lim.MaxChatLength)
		if len(m.Vocabulary) > maxVocabularyItems {
			m.Vocabulary = m.Vocabulary[:maxVocabularyItems]
		}
		for i, word := range m.Vocabulary {
			m.Vocabulary[i] = truncate(word, maxCardFieldLength)
		}
		return m, nil

	case TypeTimerEvent:
		var m TimerEvent
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, dropf("malformed", "unmarshal timer event: %w", err)
		}
		if !slices.Contains(timerKinds, m.Event) {
			return nil, dropf("bad-timer-event", "unknown timer event %q", m.Event)
		}
		if m.Duration < 0 || m.Duration > maxTimerDurationSec {
			return nil, dropf("bad-timer-duration", "timer duration %d out of range", m.Duration)
		}
		if m.NewLanguage != "" && !slices.Contains(supportedLanguages, m.NewLanguage) {
			return nil, dropf("bad-language", "unsupported language tag %q", m.NewLanguage)
		}
		return m, nil

	default:
		return nil, dropf("unknown-type", "unknown frame type %q", base.Type)
	}
}

// DropReason extracts the counter label from a Parse error.
func DropReason(err error) string {
	var d *DropError
	if errors.As(err, &d) {
		return d.Reason
	}
	return "unknown"
}

// truncate cuts s to at most n runes, never splitting a multi-byte
// sequence.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
