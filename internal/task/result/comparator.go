package result

import (
	"strings"

	"github.com/hiturf/mcp-oi-assistant/internal/constants"
	"github.com/hiturf/mcp-oi-assistant/internal/model"
)

// Comparator 输出比较器。归一化策略对两侧完全一致地应用。
type Comparator struct {
	ignoreWhitespace bool // 折叠空白串、逐行去除首尾空白
	ignoreCase       bool // 大小写折叠
}

// NewComparator 创建比较器
func NewComparator(ignoreWhitespace, ignoreCase bool) *Comparator {
	return &Comparator{
		ignoreWhitespace: ignoreWhitespace,
		ignoreCase:       ignoreCase,
	}
}

// Compare 比较实际输出与期望输出，返回结论与有界的差异摘要
func (c *Comparator) Compare(actual, expected string) *model.ComparisonVerdict {
	actualLines := c.normalizeLines(actual)
	expectedLines := c.normalizeLines(expected)

	verdict := &model.ComparisonVerdict{
		Match:             true,
		ActualLineCount:   len(actualLines),
		ExpectedLineCount: len(expectedLines),
	}

	maxLines := len(actualLines)
	if len(expectedLines) > maxLines {
		maxLines = len(expectedLines)
	}
	for i := 0; i < maxLines; i++ {
		var actualLine, expectedLine string
		if i < len(actualLines) {
			actualLine = actualLines[i]
		}
		if i < len(expectedLines) {
			expectedLine = expectedLines[i]
		}
		if actualLine == expectedLine {
			continue
		}
		verdict.Match = false
		if len(verdict.Differences) >= constants.MaxDiffLines {
			verdict.DiffTruncated = true
			break
		}
		verdict.Differences = append(verdict.Differences, model.LineDiff{
			Line:     i + 1,
			Actual:   truncateLine(actualLine),
			Expected: truncateLine(expectedLine),
		})
	}
	return verdict
}

// normalizeLines 归一化并按行切分。
// 行尾换行差异（含末尾空行）不构成差异。
func (c *Comparator) normalizeLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if c.ignoreCase {
		s = strings.ToLower(s)
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if c.ignoreWhitespace {
			lines[i] = strings.Join(strings.Fields(line), " ")
		} else {
			lines[i] = strings.TrimRight(line, " \t")
		}
	}
	// 去除尾部空行
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// truncateLine 限制单行差异的长度，避免返回超大差异载荷
func truncateLine(s string) string {
	if len(s) <= constants.MaxDiffLineLen {
		return s
	}
	return s[:constants.MaxDiffLineLen] + "..."
}
