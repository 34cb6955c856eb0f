package parser

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	applog "resume-processor/internal/logger"
	"resume-processor/internal/types"
)

// HeuristicExtractor 基于规则的章节解析器
// 纯粹依赖文本结构（标题、项目符号、标签行）做状态机切分，
// 对格式错误的内容尽力提取而不报错；只有空输入会返回错误
type HeuristicExtractor struct {
	// 学位识别关键词表，可扩展（英文简历的初始表，并不完备）
	degreeKeywords []string

	// 证书识别关键词表，可扩展
	certKeywords []string

	logger zerolog.Logger
}

// HeuristicOption 规则解析器的配置选项
type HeuristicOption func(*HeuristicExtractor)

// WithDegreeKeywords 覆盖学位识别关键词表
func WithDegreeKeywords(keywords []string) HeuristicOption {
	return func(h *HeuristicExtractor) {
		if len(keywords) > 0 {
			h.degreeKeywords = keywords
		}
	}
}

// WithCertKeywords 覆盖证书识别关键词表
func WithCertKeywords(keywords []string) HeuristicOption {
	return func(h *HeuristicExtractor) {
		if len(keywords) > 0 {
			h.certKeywords = keywords
		}
	}
}

// WithHeuristicLogger 配置自定义日志记录器
func WithHeuristicLogger(logger zerolog.Logger) HeuristicOption {
	return func(h *HeuristicExtractor) {
		h.logger = logger
	}
}

// NewHeuristicExtractor 创建规则解析器
func NewHeuristicExtractor(options ...HeuristicOption) *HeuristicExtractor {
	h := &HeuristicExtractor{
		degreeKeywords: []string{"Bachelor", "Master", "Degree", "PhD", "Doctorate", "Diploma"},
		certKeywords:   []string{"CCNA", "CCNP", "AWS Certified", "CompTIA", "PMP"},
		logger:         applog.Logger.With().Str("component", "heuristic_extractor").Logger(),
	}
	for _, option := range options {
		option(h)
	}
	return h
}

// parseState 单次Parse调用内的解析状态
// 按值传递于各flush之间，调用结束即丢弃，包级不保留任何状态
type parseState struct {
	section types.SectionTag
	buffer  []string
}

// Parse 将清洗后的简历文本解析为规范记录
// 除空输入外永不失败：无法归类的行被静默丢弃，未命中的字段保持空默认值
func (h *HeuristicExtractor) Parse(ctx context.Context, text string) (*types.ResumeRecord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	record := types.NewResumeRecord()
	state := parseState{section: types.SectionUnknown}

	for _, line := range splitLogicalLines(text) {
		if tag, rest, ok := splitSectionHeader(line); ok {
			// 切换章节前先把当前缓冲写入记录
			h.flush(&state, record)
			state.section = tag
			state.buffer = state.buffer[:0]
			// 压平文本中标题与首个加粗条目可能粘在同一逻辑行
			if rest != "" {
				state.buffer = append(state.buffer, rest)
			}
			continue
		}
		if state.section == types.SectionUnknown {
			// 未进入任何章节时的内容直接丢弃
			continue
		}
		state.buffer = append(state.buffer, line)
	}
	// 输入结束，冲刷最后一个章节
	h.flush(&state, record)

	return record, nil
}

// flush 将当前章节缓冲解析为结构化数据并合并进记录
func (h *HeuristicExtractor) flush(state *parseState, record *types.ResumeRecord) {
	if len(state.buffer) == 0 {
		return
	}
	switch state.section {
	case types.SectionPersonalInfo:
		h.flushPersonal(state.buffer, record)
	case types.SectionEducation:
		h.flushEducation(state.buffer, record)
	case types.SectionExperience:
		h.flushExperience(state.buffer, record)
	case types.SectionSkills:
		h.flushSkills(state.buffer, record)
	case types.SectionProjects:
		h.flushProjects(state.buffer, record)
	}
}

// splitLogicalLines 把文本切分为逻辑行
// 清洗阶段把OCR文本压平成了单个空格流，这里按项目符号和markdown标题
// 标记恢复行边界；LLM回复本身带换行，同样适用
func splitLogicalLines(text string) []string {
	text = strings.ReplaceAll(text, " "+Bullet+" ", "\n"+Bullet+" ")
	text = strings.ReplaceAll(text, " ###", "\n###")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// 章节标题的同义词，小写匹配
var bareSectionTitles = map[string]types.SectionTag{
	"personal information":    types.SectionPersonalInfo,
	"personal info":           types.SectionPersonalInfo,
	"contact":                 types.SectionPersonalInfo,
	"contact information":     types.SectionPersonalInfo,
	"education":               types.SectionEducation,
	"academic background":     types.SectionEducation,
	"experience":              types.SectionExperience,
	"work experience":         types.SectionExperience,
	"professional experience": types.SectionExperience,
	"employment history":      types.SectionExperience,
	"work history":            types.SectionExperience,
	"skills":                  types.SectionSkills,
	"projects":                types.SectionProjects,
}

// matchSectionHeader 判断一行是否为章节标题
func matchSectionHeader(line string) (types.SectionTag, bool) {
	tag, _, ok := splitSectionHeader(line)
	return tag, ok
}

// splitSectionHeader 判断一行是否为章节标题，并分离标题后粘连的内容
// 只有#号标记的标题按关键词包含匹配；整行加粗与裸标题都要求恰好等于
// 某个已知同义词——加粗行同时也是条目起点标记（公司名、院校名），
// 按包含匹配会把含同义词片段的条目名（如 Skillsoft）误判成标题
func splitSectionHeader(line string) (types.SectionTag, string, bool) {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, "#") {
		body := strings.TrimLeft(trimmed, "# ")
		rest := ""
		if idx := strings.Index(body, "**"); idx > 0 {
			rest = strings.TrimSpace(body[idx:])
			body = body[:idx]
		}
		name := strings.Trim(body, "#* :")
		if tag := sectionForName(name); tag != types.SectionUnknown {
			return tag, rest, true
		}
		return types.SectionUnknown, "", false
	}

	if inner, ok := boldInner(trimmed); ok && strings.HasSuffix(strings.TrimRight(trimmed, ": "), "**") {
		name := strings.ToLower(strings.Trim(inner, ": "))
		if tag, ok := bareSectionTitles[name]; ok {
			return tag, "", true
		}
		return types.SectionUnknown, "", false
	}

	if len(trimmed) <= 40 {
		name := strings.ToLower(strings.Trim(trimmed, ": "))
		if tag, ok := bareSectionTitles[name]; ok {
			return tag, "", true
		}
	}
	return types.SectionUnknown, "", false
}

// sectionForName 按关键词包含匹配章节名
func sectionForName(name string) types.SectionTag {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return types.SectionUnknown
	}
	switch {
	case strings.Contains(n, "personal") || strings.Contains(n, "contact"):
		return types.SectionPersonalInfo
	case strings.Contains(n, "education") || strings.Contains(n, "academic"):
		return types.SectionEducation
	case strings.Contains(n, "experience") || strings.Contains(n, "employment") || strings.Contains(n, "work history"):
		return types.SectionExperience
	case strings.Contains(n, "skill"):
		return types.SectionSkills
	case strings.Contains(n, "project"):
		return types.SectionProjects
	}
	return types.SectionUnknown
}

// boldInner 提取整行加粗标记（**…**）内的文本
// 行首的项目符号与列表破折号不影响判断
func boldInner(line string) (string, bool) {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, Bullet)
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "- ")
	s = strings.TrimSpace(s)

	if !strings.HasPrefix(s, "**") {
		return "", false
	}
	rest := s[2:]
	idx := strings.Index(rest, "**")
	if idx <= 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:idx]), true
}

// stripDecorations 去掉行首项目符号、列表破折号与markdown强调字符
func stripDecorations(line string) string {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, Bullet)
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "- ")
	s = strings.ReplaceAll(s, "**", "")
	s = strings.Trim(s, "*_ ")
	return strings.TrimSpace(s)
}

// matchLabel 大小写不敏感地匹配行首标签，返回标签后的值
// 标签本身带冒号，例如 "Email:"
func matchLabel(line string, label string) (string, bool) {
	s := stripDecorations(line)
	if len(s) < len(label) {
		return "", false
	}
	if !strings.EqualFold(s[:len(label)], label) {
		return "", false
	}
	value := strings.TrimSpace(s[len(label):])
	return strings.Trim(value, "*_ "), true
}

// containsFold 大小写不敏感的子串判断
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
