package types

// SectionTag 表示简历章节类型
type SectionTag string

const (
	// SectionPersonalInfo 个人信息章节
	SectionPersonalInfo SectionTag = "personal_info"
	// SectionEducation 教育经历章节
	SectionEducation SectionTag = "education"
	// SectionExperience 工作经历章节
	SectionExperience SectionTag = "experience"
	// SectionSkills 技能章节
	SectionSkills SectionTag = "skills"
	// SectionProjects 项目经历章节
	SectionProjects SectionTag = "projects"
	// SectionUnknown 未识别章节
	SectionUnknown SectionTag = "unknown"
)

// PersonalInfo 候选人基本信息，未提取到的字段保持空字符串
type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin"`
}

// Certification 教育章节中识别出的证书
type Certification struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// EducationEntry 一条教育经历
type EducationEntry struct {
	Institution    string          `json:"institution"`
	Location       string          `json:"location"`
	Degree         string          `json:"degree"`
	Dates          string          `json:"dates"`
	GPA            string          `json:"gpa"`
	Coursework     []string        `json:"coursework"`
	Certifications []Certification `json:"certifications"`
}

// ExperienceEntry 一条工作经历
type ExperienceEntry struct {
	Company      string   `json:"company"`
	Title        string   `json:"title"`
	Dates        string   `json:"dates"`
	Location     string   `json:"location"`
	Achievements []string `json:"achievements"`
}

// SkillSet 按固定类别组织的技能，四个类别始终存在
type SkillSet struct {
	Technical []string `json:"technical"`
	Soft      []string `json:"soft"`
	Languages []string `json:"languages"`
	Tools     []string `json:"tools"`
}

// ProjectEntry 一条项目经历
type ProjectEntry struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	URL          string   `json:"url"`
}

// ResumeRecord 简历解析的规范输出结构
// 所有提取策略共享同一套字段名，未提取到的字段保持空默认值，
// 序列字段保证非nil（JSON序列化为 [] 而非 null）
type ResumeRecord struct {
	PersonalInfo PersonalInfo      `json:"personal_info"`
	Education    []EducationEntry  `json:"education"`
	Experience   []ExperienceEntry `json:"experience"`
	Skills       SkillSet          `json:"skills"`
	Projects     []ProjectEntry    `json:"projects"`
}

// NewResumeRecord 创建一个所有序列字段均已初始化的空记录
func NewResumeRecord() *ResumeRecord {
	return &ResumeRecord{
		Education:  []EducationEntry{},
		Experience: []ExperienceEntry{},
		Skills: SkillSet{
			Technical: []string{},
			Soft:      []string{},
			Languages: []string{},
			Tools:     []string{},
		},
		Projects: []ProjectEntry{},
	}
}

// Normalize 修复JSON反序列化后可能出现的nil序列字段
// LLM返回的JSON经常省略空数组，这里统一补齐，保证记录总是良构的
func (r *ResumeRecord) Normalize() {
	if r.Education == nil {
		r.Education = []EducationEntry{}
	}
	for i := range r.Education {
		if r.Education[i].Coursework == nil {
			r.Education[i].Coursework = []string{}
		}
		if r.Education[i].Certifications == nil {
			r.Education[i].Certifications = []Certification{}
		}
	}
	if r.Experience == nil {
		r.Experience = []ExperienceEntry{}
	}
	for i := range r.Experience {
		if r.Experience[i].Achievements == nil {
			r.Experience[i].Achievements = []string{}
		}
	}
	if r.Skills.Technical == nil {
		r.Skills.Technical = []string{}
	}
	if r.Skills.Soft == nil {
		r.Skills.Soft = []string{}
	}
	if r.Skills.Languages == nil {
		r.Skills.Languages = []string{}
	}
	if r.Skills.Tools == nil {
		r.Skills.Tools = []string{}
	}
	if r.Projects == nil {
		r.Projects = []ProjectEntry{}
	}
	for i := range r.Projects {
		if r.Projects[i].Technologies == nil {
			r.Projects[i].Technologies = []string{}
		}
	}
}
