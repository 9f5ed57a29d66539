package result

import (
	"fmt"
	"strings"
	"testing"

	"github.com/hiturf/mcp-oi-assistant/internal/constants"
)

func TestComparator_Compare_IgnoreWhitespace(t *testing.T) {
	comparator := NewComparator(true, false)

	tests := []struct {
		name           string
		actualOutput   string
		expectedOutput string
		want           bool
	}{
		{
			name:           "完全相同",
			actualOutput:   "Hello World",
			expectedOutput: "Hello World",
			want:           true,
		},
		{
			name:           "行尾换行差异",
			actualOutput:   "a b\n",
			expectedOutput: "a b",
			want:           true,
		},
		{
			name:           "行内多余空格",
			actualOutput:   "a  b\n",
			expectedOutput: "a b",
			want:           true,
		},
		{
			name:           "行首缩进",
			actualOutput:   "\ta b",
			expectedOutput: "a b",
			want:           true,
		},
		{
			name:           "Windows换行符",
			actualOutput:   "1\r\n2\r\n",
			expectedOutput: "1\n2",
			want:           true,
		},
		{
			name:           "末尾多个空行",
			actualOutput:   "1\n2\n\n\n",
			expectedOutput: "1\n2",
			want:           true,
		},
		{
			name:           "内容不同",
			actualOutput:   "Hello World",
			expectedOutput: "Hello Universe",
			want:           false,
		},
		{
			name:           "大小写不同（未开启折叠）",
			actualOutput:   "A",
			expectedOutput: "a",
			want:           false,
		},
		{
			name:           "行数不同",
			actualOutput:   "1\n2\n3",
			expectedOutput: "1\n2",
			want:           false,
		},
		{
			name:           "中间空行不可忽略",
			actualOutput:   "1\n\n2",
			expectedOutput: "1\n2",
			want:           false,
		},
		{
			name:           "两侧皆空",
			actualOutput:   "",
			expectedOutput: "",
			want:           true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := comparator.Compare(tt.actualOutput, tt.expectedOutput)
			if got.Match != tt.want {
				t.Errorf("Compare().Match = %v, want %v\nActual: %q\nExpected: %q",
					got.Match, tt.want, tt.actualOutput, tt.expectedOutput)
			}
		})
	}
}

func TestComparator_Compare_StrictWhitespace(t *testing.T) {
	comparator := NewComparator(false, false)

	tests := []struct {
		name           string
		actualOutput   string
		expectedOutput string
		want           bool
	}{
		{
			name:           "行内多余空格（严格模式）",
			actualOutput:   "a  b",
			expectedOutput: "a b",
			want:           false,
		},
		{
			name:           "行尾空白仍可忽略",
			actualOutput:   "a b  \n",
			expectedOutput: "a b",
			want:           true,
		},
		{
			name:           "行首空白不可忽略",
			actualOutput:   " a b",
			expectedOutput: "a b",
			want:           false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := comparator.Compare(tt.actualOutput, tt.expectedOutput)
			if got.Match != tt.want {
				t.Errorf("Compare().Match = %v, want %v", got.Match, tt.want)
			}
		})
	}
}

func TestComparator_Compare_IgnoreCase(t *testing.T) {
	comparator := NewComparator(true, true)

	got := comparator.Compare("Hello WORLD", "hello world")
	if !got.Match {
		t.Errorf("Compare().Match = false, want true")
	}
}

func TestComparator_Compare_DiffDetails(t *testing.T) {
	comparator := NewComparator(true, false)

	got := comparator.Compare("1\nx\n3", "1\n2\n3")
	if got.Match {
		t.Fatal("Compare().Match = true, want false")
	}
	if len(got.Differences) != 1 {
		t.Fatalf("len(Differences) = %d, want 1", len(got.Differences))
	}
	diff := got.Differences[0]
	if diff.Line != 2 || diff.Actual != "x" || diff.Expected != "2" {
		t.Errorf("Differences[0] = %+v, want {Line:2 Actual:x Expected:2}", diff)
	}
	if got.ActualLineCount != 3 || got.ExpectedLineCount != 3 {
		t.Errorf("line counts = (%d, %d), want (3, 3)", got.ActualLineCount, got.ExpectedLineCount)
	}
}

func TestComparator_Compare_DiffBounded(t *testing.T) {
	comparator := NewComparator(true, false)

	// 构造远超差异上限的不同行
	var actual, expected strings.Builder
	for i := 0; i < constants.MaxDiffLines*3; i++ {
		fmt.Fprintf(&actual, "a%d\n", i)
		fmt.Fprintf(&expected, "b%d\n", i)
	}

	got := comparator.Compare(actual.String(), expected.String())
	if got.Match {
		t.Fatal("Compare().Match = true, want false")
	}
	if len(got.Differences) != constants.MaxDiffLines {
		t.Errorf("len(Differences) = %d, want %d", len(got.Differences), constants.MaxDiffLines)
	}
	if !got.DiffTruncated {
		t.Error("DiffTruncated = false, want true")
	}
}

func TestComparator_Compare_LongLineTruncated(t *testing.T) {
	comparator := NewComparator(true, false)

	longLine := strings.Repeat("x", constants.MaxDiffLineLen*2)
	got := comparator.Compare(longLine, "y")
	if got.Match {
		t.Fatal("Compare().Match = true, want false")
	}
	if len(got.Differences[0].Actual) > constants.MaxDiffLineLen+3 {
		t.Errorf("diff line length = %d, want <= %d",
			len(got.Differences[0].Actual), constants.MaxDiffLineLen+3)
	}
}
