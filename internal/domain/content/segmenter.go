// Package content turns raw assistant output into typed render segments.
//
// Assistant replies may embed hidden reasoning spans and fenced code blocks.
// Segment strips the former and splits the rest into plain-text and code
// segments in document order. The output is transient render input and is
// never persisted.
package content

import "strings"

const (
	reasoningOpen  = "<think>"
	reasoningClose = "</think>"
	fence          = "```"

	// DefaultLanguage is used for fences that carry no language tag.
	DefaultLanguage = "text"
)

// Kind discriminates segment variants.
type Kind string

const (
	KindText Kind = "text"
	KindCode Kind = "code"
)

// Segment is one contiguous span of assistant output. Text is set for
// KindText; Language and Code are set for KindCode.
type Segment struct {
	Kind     Kind
	Text     string
	Language string
	Code     string
}

// TextSegment builds a plain-text segment.
func TextSegment(raw string) Segment {
	return Segment{Kind: KindText, Text: raw}
}

// CodeSegment builds a code segment.
func CodeSegment(language, body string) Segment {
	return Segment{Kind: KindCode, Language: language, Code: body}
}

// Parse splits raw assistant text into ordered segments. It never panics:
// any internal failure degrades to a single text segment holding the
// reasoning-stripped input.
func Parse(raw string) []Segment {
	stripped := StripReasoning(raw)

	segments := func() (segs []Segment) {
		defer func() {
			if r := recover(); r != nil {
				segs = []Segment{TextSegment(stripped)}
			}
		}()
		return scanFences(stripped)
	}()

	return segments
}

// StripReasoning removes every paired hidden-reasoning span, innermost pair
// first, repeating until no pair remains (so nested markers strip fully). A
// marker with no counterpart is left untouched so legitimate content is never
// destroyed. The survivor is trimmed of surrounding whitespace.
func StripReasoning(raw string) string {
	s := raw
	from := 0
	for {
		rel := strings.Index(s[from:], reasoningClose)
		if rel < 0 {
			break
		}
		end := from + rel
		start := strings.LastIndex(s[:end], reasoningOpen)
		if start < 0 {
			// Orphan closing marker: skip past it.
			from = end + len(reasoningClose)
			continue
		}
		s = s[:start] + s[end+len(reasoningClose):]
		from = 0
	}
	return strings.TrimSpace(s)
}

// scanFences walks the text left to right recognizing fence-open and
// fence-close tokens. A fence only counts as one when its closing delimiter
// exists; an unterminated trailing fence is ordinary text.
func scanFences(s string) []Segment {
	var segs []Segment
	last := 0
	i := 0

	for {
		rel := strings.Index(s[i:], fence)
		if rel < 0 {
			break
		}
		openAt := i + rel

		// Optional language tag: a run of word characters directly after
		// the opening delimiter.
		j := openAt + len(fence)
		tagStart := j
		for j < len(s) && isWordByte(s[j]) {
			j++
		}
		tag := s[tagStart:j]

		// Whitespace between the tag and the body is not part of either.
		bodyStart := j
		for bodyStart < len(s) && isSpaceByte(s[bodyStart]) {
			bodyStart++
		}

		closeRel := strings.Index(s[bodyStart:], fence)
		if closeRel < 0 {
			// No matching close anywhere: the rest is ordinary text.
			break
		}
		closeAt := bodyStart + closeRel

		if openAt > last {
			segs = append(segs, TextSegment(s[last:openAt]))
		}
		lang := tag
		if lang == "" {
			lang = DefaultLanguage
		}
		segs = append(segs, CodeSegment(lang, strings.TrimSpace(s[bodyStart:closeAt])))

		i = closeAt + len(fence)
		last = i
	}

	if last < len(s) {
		segs = append(segs, TextSegment(s[last:]))
	}
	if len(segs) == 0 {
		segs = []Segment{TextSegment(s)}
	}
	return segs
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
