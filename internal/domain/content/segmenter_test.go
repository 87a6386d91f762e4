package content

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseNoFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain sentence", "Hello there.", "Hello there."},
		{"multiline", "line one\nline two", "line one\nline two"},
		{"empty", "", ""},
		{"only backtick pair", "inline `code` stays text", "inline `code` stays text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			want := []Segment{TextSegment(tt.want)}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, want)
			}
		})
	}
}

func TestParseFencedCode(t *testing.T) {
	got := Parse("Hello ```js\nconsole.log(1)\n```World")
	want := []Segment{
		TextSegment("Hello "),
		CodeSegment("js", "console.log(1)"),
		TextSegment("World"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParseFenceVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Segment
	}{
		{
			name:  "no language tag defaults to text",
			input: "```\nls -la\n```",
			want:  []Segment{CodeSegment("text", "ls -la")},
		},
		{
			name:  "tag separated by space is not a tag",
			input: "``` js\nx```",
			want:  []Segment{CodeSegment("text", "js\nx")},
		},
		{
			name:  "two fences with text between",
			input: "```go\na```mid```py\nb```",
			want: []Segment{
				CodeSegment("go", "a"),
				TextSegment("mid"),
				CodeSegment("py", "b"),
			},
		},
		{
			name:  "empty fence",
			input: "``````",
			want:  []Segment{CodeSegment("text", "")},
		},
		{
			name:  "surrounding whitespace trimmed before scanning",
			input: "  ```sh\necho hi```  ",
			want:  []Segment{CodeSegment("sh", "echo hi")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseUnterminatedFence(t *testing.T) {
	input := "a ```js\nb"
	got := Parse(input)
	want := []Segment{TextSegment(input)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse(%q) = %+v, want single text segment", input, got)
	}
}

func TestParseTrailingUnterminatedFenceAfterCode(t *testing.T) {
	got := Parse("```go\nx``` then ```broken")
	want := []Segment{
		CodeSegment("go", "x"),
		TextSegment(" then ```broken"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}
}

func TestStripReasoning(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "single span removed",
			input: "<think>ignored</think>visible",
			want:  "visible",
		},
		{
			name:  "multiple spans removed",
			input: "a<think>x</think>b<think>y</think>c",
			want:  "abc",
		},
		{
			name:  "span removal repeats until none remain",
			input: "<think>a<think>b</think>c</think>d",
			want:  "d",
		},
		{
			name:  "unterminated marker left untouched",
			input: "keep <think>this because it never closes",
			want:  "keep <think>this because it never closes",
		},
		{
			name:  "closing marker alone left untouched",
			input: "no opener </think> here",
			want:  "no opener </think> here",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  <think>gone</think>  kept  ",
			want:  "kept",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripReasoning(tt.input); got != tt.want {
				t.Errorf("StripReasoning(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseStripsReasoningBeforeScanning(t *testing.T) {
	got := Parse("<think>internal monologue</think>answer ```py\nprint(1)\n```")
	want := []Segment{
		TextSegment("answer "),
		CodeSegment("py", "print(1)"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}
	for _, seg := range got {
		if strings.Contains(seg.Text, "monologue") || strings.Contains(seg.Code, "monologue") {
			t.Error("reasoning content leaked into output")
		}
	}
}

func TestParseAdversarialInputDoesNotPanic(t *testing.T) {
	inputs := []string{
		strings.Repeat("```", 1001),
		strings.Repeat("<think>", 500),
		"<think>" + strings.Repeat("a", 1<<16) + "</think>```",
		"`` ` `` ``` ``` ```",
	}
	for _, in := range inputs {
		segs := Parse(in)
		if len(segs) == 0 {
			t.Errorf("Parse(%.20q...) returned no segments", in)
		}
	}
}
