package model

// LineDiff 单行差异
type LineDiff struct {
	Line     int    `json:"line"`     // 行号（从1开始）
	Actual   string `json:"actual"`   // 实际输出行
	Expected string `json:"expected"` // 期望输出行
}

// ComparisonVerdict 输出比较结果
type ComparisonVerdict struct {
	Match             bool       `json:"match"`               // 归一化后是否一致
	Differences       []LineDiff `json:"differences"`         // 差异摘要（有界）
	ActualLineCount   int        `json:"actual_line_count"`   // 实际输出行数
	ExpectedLineCount int        `json:"expected_line_count"` // 期望输出行数
	DiffTruncated     bool       `json:"diff_truncated"`      // 差异列表是否被截断
}

// TestCase 一条测试用例（输入 + 期望输出）
type TestCase struct {
	ID       string `json:"id"`       // 测试用例标识
	Input    string `json:"input"`    // 输入数据
	Expected string `json:"expected"` // 期望输出
}
