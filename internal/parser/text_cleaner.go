package parser

import (
	"regexp"
	"strings"
)

// OCR输出的确定性清洗规则
// 清洗是有损的：OCR的换行位置本身不可靠，所以统一压平为单个空格流，
// 仅保留项目符号作为独立标记。下游解析器不得假设一行一条事实
var (
	// OCR常把项目符号误识别为行首的 e / o / -
	reBulletE    = regexp.MustCompile(`(?m)^e\s+`)
	reBulletO    = regexp.MustCompile(`(?m)^o\s+`)
	reBulletDash = regexp.MustCompile(`(?m)^-\s+`)

	// 3个及以上连续换行压为一个空行
	reExtraNewlines = regexp.MustCompile(`\n{3,}`)

	// 剩余的所有空白串压为单个空格
	reWhitespace = regexp.MustCompile(`\s+`)
)

// Bullet 清洗后统一使用的项目符号
const Bullet = "•"

// CleanText 对OCR原始文本做确定性规范化
// 对已清洗文本再次调用结果不变（幂等）
func CleanText(text string) string {
	text = reBulletE.ReplaceAllString(text, Bullet+" ")
	text = reBulletO.ReplaceAllString(text, Bullet+" ")
	text = reBulletDash.ReplaceAllString(text, Bullet+" ")

	text = reExtraNewlines.ReplaceAllString(text, "\n\n")

	text = reWhitespace.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
