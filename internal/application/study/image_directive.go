package study

import (
	"regexp"
	"strings"
)

var imageDirectivePattern = regexp.MustCompile(`(?is)\[IMAGE:\s*(.*?)\]`)

// ExtractImageDescription 返回文本中首个 [IMAGE: ...] 指令的描述，没有则返回空串
func ExtractImageDescription(text string) string {
	m := imageDirectivePattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
