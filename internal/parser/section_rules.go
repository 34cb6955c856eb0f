package parser

import (
	"regexp"
	"strings"

	"resume-processor/internal/types"
)

// 个人信息章节的固定标签集，按序首个命中生效
var personalLabels = []struct {
	label string
	apply func(*types.PersonalInfo, string)
}{
	{"Full name:", func(p *types.PersonalInfo, v string) { p.Name = v }},
	{"Email:", func(p *types.PersonalInfo, v string) { p.Email = v }},
	{"Phone number:", func(p *types.PersonalInfo, v string) { p.Phone = v }},
	{"Location:", func(p *types.PersonalInfo, v string) { p.Location = v }},
	{"LinkedIn profile:", func(p *types.PersonalInfo, v string) { p.LinkedIn = v }},
}

// flushPersonal 逐行扫描固定标签，未带标签的行忽略
// 多个个人信息块之间按非空值合并
func (h *HeuristicExtractor) flushPersonal(lines []string, record *types.ResumeRecord) {
	for _, line := range lines {
		for _, entry := range personalLabels {
			if value, ok := matchLabel(line, entry.label); ok {
				if value != "" {
					entry.apply(&record.PersonalInfo, value)
				}
				break
			}
		}
	}
}

// 证书行中的年份，例如 "CCNA (2021)"
var reCertYear = regexp.MustCompile(`(19|20)\d{2}`)

// flushEducation 以加粗的院校行作为条目起点
// 院校行若含逗号，首个逗号前为院校名，其余为地点
func (h *HeuristicExtractor) flushEducation(lines []string, record *types.ResumeRecord) {
	var current *types.EducationEntry
	closeCurrent := func() {
		if current != nil {
			record.Education = append(record.Education, *current)
			current = nil
		}
	}

	for _, line := range lines {
		if inner, ok := boldInner(line); ok && isInstitutionMarker(inner) {
			closeCurrent()
			entry := types.EducationEntry{
				Coursework:     []string{},
				Certifications: []types.Certification{},
			}
			if idx := strings.Index(inner, ","); idx >= 0 {
				entry.Institution = strings.TrimSpace(inner[:idx])
				entry.Location = strings.TrimSpace(inner[idx+1:])
			} else {
				entry.Institution = inner
			}
			current = &entry
			continue
		}
		if current == nil {
			// 条目起点之前的行无法归属，丢弃
			continue
		}

		if value, ok := matchLabel(line, "Dates:"); ok {
			current.Dates = value
			continue
		}
		if value, ok := matchLabel(line, "GPA:"); ok {
			current.GPA = value
			continue
		}
		if value, ok := matchLabel(line, "Relevant coursework:"); ok {
			current.Coursework = append(current.Coursework, splitCommaList(value)...)
			continue
		}
		if value, ok := matchLabel(line, "Coursework:"); ok {
			current.Coursework = append(current.Coursework, splitCommaList(value)...)
			continue
		}
		if kw := h.matchKeyword(line, h.certKeywords); kw != "" {
			cert := types.Certification{Name: stripDecorations(line)}
			if year := reCertYear.FindString(line); year != "" {
				cert.Date = year
			}
			current.Certifications = append(current.Certifications, cert)
			continue
		}
		if h.matchKeyword(line, h.degreeKeywords) != "" && current.Degree == "" {
			current.Degree = stripLabelPrefix(stripDecorations(line), "Degree:")
			continue
		}
		// 其余行不强行归类
	}
	closeCurrent()
}

// isInstitutionMarker 判断加粗文本是否为院校条目起点
// 加粗的标签行（如 **Dates:**）不是条目起点
func isInstitutionMarker(inner string) bool {
	if containsFold(inner, "Title:") || containsFold(inner, "Dates:") {
		return false
	}
	return !strings.HasSuffix(inner, ":")
}

// flushExperience 以加粗的子标题作为条目起点，标题文本即公司名
func (h *HeuristicExtractor) flushExperience(lines []string, record *types.ResumeRecord) {
	var current *types.ExperienceEntry
	closeCurrent := func() {
		if current != nil {
			record.Experience = append(record.Experience, *current)
			current = nil
		}
	}

	for _, line := range lines {
		if inner, ok := boldInner(line); ok && !strings.HasSuffix(inner, ":") &&
			!containsFold(inner, "Title:") && !containsFold(inner, "Dates:") {
			closeCurrent()
			current = &types.ExperienceEntry{
				Company:      inner,
				Achievements: []string{},
			}
			continue
		}
		if current == nil {
			continue
		}

		if value, ok := matchLabel(line, "Title:"); ok {
			current.Title = value
			continue
		}
		if value, ok := matchLabel(line, "Dates:"); ok {
			current.Dates = value
			continue
		}
		if value, ok := matchLabel(line, "Location:"); ok {
			current.Location = value
			continue
		}
		// 非标签的非空行一律视为工作成果
		if text := stripDecorations(line); text != "" {
			current.Achievements = append(current.Achievements, text)
		}
	}
	closeCurrent()
}

// 技能章节的类别标签，按序首个命中生效
var skillLabels = []struct {
	label  string
	target func(*types.SkillSet) *[]string
}{
	{"Technical skills:", func(s *types.SkillSet) *[]string { return &s.Technical }},
	{"Soft skills:", func(s *types.SkillSet) *[]string { return &s.Soft }},
	{"Languages:", func(s *types.SkillSet) *[]string { return &s.Languages }},
	{"Tools:", func(s *types.SkillSet) *[]string { return &s.Tools }},
}

// flushSkills 类别标签切换当前类别，标签后与后续未标注行按逗号切分累加
// 类别内去重，保留首次出现的顺序
func (h *HeuristicExtractor) flushSkills(lines []string, record *types.ResumeRecord) {
	var active *[]string

	for _, line := range lines {
		matched := false
		for _, entry := range skillLabels {
			value, ok := matchLabel(line, entry.label)
			if !ok {
				continue
			}
			matched = true
			active = entry.target(&record.Skills)
			if containsFold(value, "Not specified") {
				// "Not specified" 标记清空该类别而非填入
				*active = []string{}
				active = nil
				break
			}
			if value != "" {
				appendUnique(active, splitCommaList(value))
			}
			break
		}
		if matched {
			continue
		}
		if active != nil {
			appendUnique(active, splitCommaList(stripDecorations(line)))
		}
	}
}

// 项目章节里表示“无项目”的显式短语
var emptyProjectPhrases = []string{
	"no explicitly listed projects",
	"no projects listed",
}

// flushProjects 以 "Project:"/"Name:" 标签作为条目起点
// 缓冲中出现“无项目”短语时整节输出空序列，忽略其余内容
func (h *HeuristicExtractor) flushProjects(lines []string, record *types.ResumeRecord) {
	for _, line := range lines {
		for _, phrase := range emptyProjectPhrases {
			if containsFold(line, phrase) {
				record.Projects = []types.ProjectEntry{}
				return
			}
		}
	}

	var current *types.ProjectEntry
	closeCurrent := func() {
		if current != nil {
			record.Projects = append(record.Projects, *current)
			current = nil
		}
	}

	for _, line := range lines {
		if value, ok := matchLabel(line, "Project:"); ok {
			closeCurrent()
			current = &types.ProjectEntry{Name: value, Technologies: []string{}}
			continue
		}
		if value, ok := matchLabel(line, "Name:"); ok {
			closeCurrent()
			current = &types.ProjectEntry{Name: value, Technologies: []string{}}
			continue
		}
		if current == nil {
			continue
		}

		if value, ok := matchLabel(line, "Description:"); ok {
			current.Description = value
			continue
		}
		if value, ok := matchLabel(line, "Technologies used:"); ok {
			current.Technologies = append(current.Technologies, splitCommaList(value)...)
			continue
		}
		if value, ok := matchLabel(line, "Technologies:"); ok {
			current.Technologies = append(current.Technologies, splitCommaList(value)...)
			continue
		}
		if value, ok := matchLabel(line, "URL:"); ok {
			current.URL = value
			continue
		}
	}
	closeCurrent()
}

// matchKeyword 返回行内命中的首个关键词，大小写不敏感
func (h *HeuristicExtractor) matchKeyword(line string, keywords []string) string {
	for _, kw := range keywords {
		if containsFold(line, kw) {
			return kw
		}
	}
	return ""
}

// splitCommaList 逗号切分并修剪，丢弃空token
func splitCommaList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		token := strings.Trim(strings.TrimSpace(part), "*_.")
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// appendUnique 追加token并保持类别内去重（保留首次出现顺序）
func appendUnique(dst *[]string, tokens []string) {
	for _, token := range tokens {
		exists := false
		for _, have := range *dst {
			if strings.EqualFold(have, token) {
				exists = true
				break
			}
		}
		if !exists {
			*dst = append(*dst, token)
		}
	}
}

// stripLabelPrefix 去掉可选的标签前缀
func stripLabelPrefix(s, label string) string {
	if len(s) >= len(label) && strings.EqualFold(s[:len(label)], label) {
		return strings.TrimSpace(s[len(label):])
	}
	return s
}
