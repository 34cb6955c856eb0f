package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-processor/internal/types"
)

// 模拟LLM回复形态的完整简历markdown
const sampleResumeMarkdown = `### PERSONAL INFORMATION
- **Full name:** Jane Smith
- **Email:** jane.smith@example.com
- **Phone number:** +1 555 0100
- **Location:** Springfield, IL
- **LinkedIn profile:** linkedin.com/in/janesmith

### EDUCATION
**University of Excellence, Springfield, IL**
- **Degree:** Bachelor of Science in Computer Science
- **Dates:** 2015 - 2019
- **GPA:** 3.8
- **Relevant coursework:** Algorithms, Databases, Operating Systems
- CCNA (2021)

### EXPERIENCE
**Acme Corp**
- **Title:** Software Engineer
- **Dates:** 2019 - 2022
- **Location:** Chicago, IL
- Built the billing pipeline
- Reduced API latency by 40%

**Beta LLC**
- **Title:** Senior Engineer
- **Dates:** 2022 - Present
- **Location:** Remote
- Led a team of five engineers

### SKILLS
- **Technical skills:** Go, Python, SQL, Go
- **Soft skills:** Communication, Leadership
- **Languages:** English, Spanish
- **Tools:** Docker, Kubernetes

### PROJECTS
- **Project:** Resume Parser
- **Description:** Extracts structured data from resumes
- **Technologies used:** Go, Tesseract
- **URL:** github.com/janesmith/parser`

func TestHeuristicExtractor_FullResume(t *testing.T) {
	extractor := NewHeuristicExtractor()
	record, err := extractor.Parse(context.Background(), sampleResumeMarkdown)
	require.NoError(t, err, "规则解析器对良构输入不应报错")
	require.NotNil(t, record)

	t.Run("个人信息", func(t *testing.T) {
		assert.Equal(t, "Jane Smith", record.PersonalInfo.Name)
		assert.Equal(t, "jane.smith@example.com", record.PersonalInfo.Email)
		assert.Equal(t, "+1 555 0100", record.PersonalInfo.Phone)
		assert.Equal(t, "Springfield, IL", record.PersonalInfo.Location)
		assert.Equal(t, "linkedin.com/in/janesmith", record.PersonalInfo.LinkedIn)
	})

	t.Run("教育经历", func(t *testing.T) {
		require.Len(t, record.Education, 1)
		edu := record.Education[0]
		assert.Equal(t, "University of Excellence", edu.Institution, "首个逗号前为院校名")
		assert.Equal(t, "Springfield, IL", edu.Location, "首个逗号后为地点")
		assert.Contains(t, edu.Degree, "Bachelor of Science")
		assert.Equal(t, "2015 - 2019", edu.Dates)
		assert.Equal(t, "3.8", edu.GPA)
		assert.Equal(t, []string{"Algorithms", "Databases", "Operating Systems"}, edu.Coursework)
		require.Len(t, edu.Certifications, 1, "CCNA行应识别为证书")
		assert.Contains(t, edu.Certifications[0].Name, "CCNA")
		assert.Equal(t, "2021", edu.Certifications[0].Date, "证书行中的年份应提取为日期")
	})

	t.Run("工作经历", func(t *testing.T) {
		require.Len(t, record.Experience, 2, "两个加粗公司名应产生两个条目")
		first := record.Experience[0]
		assert.Equal(t, "Acme Corp", first.Company)
		assert.Equal(t, "Software Engineer", first.Title)
		assert.Equal(t, "2019 - 2022", first.Dates)
		assert.Equal(t, "Chicago, IL", first.Location)
		assert.Equal(t, []string{"Built the billing pipeline", "Reduced API latency by 40%"}, first.Achievements)

		second := record.Experience[1]
		assert.Equal(t, "Beta LLC", second.Company)
		assert.Equal(t, "Senior Engineer", second.Title)
		assert.Equal(t, []string{"Led a team of five engineers"}, second.Achievements)
	})

	t.Run("技能去重", func(t *testing.T) {
		// "Go" 在technical里出现两次，类别内去重保留首次
		assert.Equal(t, []string{"Go", "Python", "SQL"}, record.Skills.Technical)
		assert.Equal(t, []string{"Communication", "Leadership"}, record.Skills.Soft)
		assert.Equal(t, []string{"English", "Spanish"}, record.Skills.Languages)
		assert.Equal(t, []string{"Docker", "Kubernetes"}, record.Skills.Tools)
	})

	t.Run("项目经历", func(t *testing.T) {
		require.Len(t, record.Projects, 1)
		project := record.Projects[0]
		assert.Equal(t, "Resume Parser", project.Name)
		assert.Equal(t, "Extracts structured data from resumes", project.Description)
		assert.Equal(t, []string{"Go", "Tesseract"}, project.Technologies)
		assert.Equal(t, "github.com/janesmith/parser", project.URL)
	})
}

func TestHeuristicExtractor_EmptyInput(t *testing.T) {
	extractor := NewHeuristicExtractor()

	_, err := extractor.Parse(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyInput, "空输入必须返回ErrEmptyInput")

	_, err = extractor.Parse(context.Background(), "   \n\t ")
	assert.ErrorIs(t, err, ErrEmptyInput, "纯空白输入同样视为空")
}

func TestHeuristicExtractor_MalformedNeverFails(t *testing.T) {
	extractor := NewHeuristicExtractor()

	inputs := []string{
		"complete garbage with no structure at all",
		"### UNKNOWN SECTION\n- random content",
		"• • • ###",
		"**bold text without any section**",
	}
	for _, input := range inputs {
		record, err := extractor.Parse(context.Background(), input)
		require.NoError(t, err, "非空的畸形输入不应报错: %q", input)
		require.NotNil(t, record)
		// 记录必须良构：所有序列字段非nil
		assert.NotNil(t, record.Education)
		assert.NotNil(t, record.Experience)
		assert.NotNil(t, record.Skills.Technical)
		assert.NotNil(t, record.Skills.Soft)
		assert.NotNil(t, record.Skills.Languages)
		assert.NotNil(t, record.Skills.Tools)
		assert.NotNil(t, record.Projects)
	}
}

func TestHeuristicExtractor_UnknownSectionDropped(t *testing.T) {
	extractor := NewHeuristicExtractor()
	input := `leading noise before any section
### HOBBIES
- **Full name:** Should Not Appear
### PERSONAL INFORMATION
- **Full name:** Real Name`

	record, err := extractor.Parse(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Real Name", record.PersonalInfo.Name,
		"未识别章节与章节外的内容必须丢弃，不得渗入记录")
}

func TestHeuristicExtractor_PersonalInfoMerge(t *testing.T) {
	extractor := NewHeuristicExtractor()
	// 两个个人信息块，后块的空值不得覆盖前块的非空值
	input := `### PERSONAL INFORMATION
- **Full name:** Jane Smith
- **Email:** jane@example.com
### CONTACT INFORMATION
- **Full name:**
- **Phone number:** +1 555 0100`

	record, err := extractor.Parse(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", record.PersonalInfo.Name, "空值不覆盖已提取的姓名")
	assert.Equal(t, "jane@example.com", record.PersonalInfo.Email)
	assert.Equal(t, "+1 555 0100", record.PersonalInfo.Phone, "后块的非空字段正常合并")
}

func TestHeuristicExtractor_SkillsNotSpecified(t *testing.T) {
	extractor := NewHeuristicExtractor()
	input := `### SKILLS
- **Technical skills:** Go, Rust
- **Soft skills:** Not specified
- **Languages:** English`

	record, err := extractor.Parse(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Rust"}, record.Skills.Technical)
	assert.Empty(t, record.Skills.Soft, "Not specified表示该类别为空")
	assert.NotNil(t, record.Skills.Soft, "空类别仍须是非nil切片")
	assert.Equal(t, []string{"English"}, record.Skills.Languages)
}

func TestHeuristicExtractor_NoProjectsPhrase(t *testing.T) {
	extractor := NewHeuristicExtractor()
	input := `### PROJECTS
There are no explicitly listed projects in this resume.
- **Project:** Ghost Project`

	record, err := extractor.Parse(context.Background(), input)
	require.NoError(t, err)
	assert.Empty(t, record.Projects, "出现“无项目”短语时整节输出空序列")
	assert.NotNil(t, record.Projects)
}

func TestHeuristicExtractor_FlattenedInput(t *testing.T) {
	// OCR链路的清洗把文本压平成单个空格流，解析端按项目符号和
	// 标题标记恢复逻辑行
	extractor := NewHeuristicExtractor()
	flattened := CleanText(sampleResumeMarkdown)
	require.NotContains(t, flattened, "\n", "清洗后的文本不应再有换行")

	record, err := extractor.Parse(context.Background(), flattened)
	require.NoError(t, err)

	assert.Equal(t, "Jane Smith", record.PersonalInfo.Name)
	assert.Equal(t, "jane.smith@example.com", record.PersonalInfo.Email)
	require.NotEmpty(t, record.Education, "压平文本中标题后粘连的院校行应被恢复")
	assert.Equal(t, "University of Excellence", record.Education[0].Institution)
	assert.Equal(t, []string{"Go", "Python", "SQL"}, record.Skills.Technical)
}

func TestHeuristicExtractor_BareSectionTitles(t *testing.T) {
	extractor := NewHeuristicExtractor()
	input := `Education
**State College**
- **Dates:** 2010 - 2014
Work Experience
**Initech**
- **Title:** Analyst`

	record, err := extractor.Parse(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, record.Education, 1, "无标记的已知标题应被识别")
	assert.Equal(t, "State College", record.Education[0].Institution)
	require.Len(t, record.Experience, 1)
	assert.Equal(t, "Initech", record.Experience[0].Company)
	assert.Equal(t, "Analyst", record.Experience[0].Title)
}

func TestHeuristicExtractor_CustomKeywords(t *testing.T) {
	extractor := NewHeuristicExtractor(
		WithCertKeywords([]string{"CKA"}),
		WithDegreeKeywords([]string{"Licenciatura"}),
	)
	input := `### EDUCATION
**Universidad Central, Madrid**
- Licenciatura en Informatica
- CKA (2023)`

	record, err := extractor.Parse(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, record.Education, 1)
	assert.Contains(t, record.Education[0].Degree, "Licenciatura", "自定义学位关键词生效")
	require.Len(t, record.Education[0].Certifications, 1, "自定义证书关键词生效")
	assert.Equal(t, "2023", record.Education[0].Certifications[0].Date)
}

func TestHeuristicExtractor_BoldCompanyNotHeader(t *testing.T) {
	// 加粗的公司名是工作经历的条目起点；其中含有章节同义词片段
	// （Skillsoft里的skill、Project Lead里的project）也不得触发章节切换
	extractor := NewHeuristicExtractor()
	input := `### EXPERIENCE
**Skillsoft**
- **Title:** Software Engineer
- Shipped the learning platform
**Project Lead Inc**
- **Title:** Engineering Manager
- Led the migration effort`

	record, err := extractor.Parse(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, record.Experience, 2, "两个加粗公司名都应成为工作经历条目")
	assert.Equal(t, "Skillsoft", record.Experience[0].Company)
	assert.Equal(t, "Software Engineer", record.Experience[0].Title)
	assert.Equal(t, "Project Lead Inc", record.Experience[1].Company)
	assert.Equal(t, []string{"Led the migration effort"}, record.Experience[1].Achievements)

	// 条目内容不得泄漏到其他章节
	assert.Empty(t, record.Skills.Technical)
	assert.Empty(t, record.Projects)
}

func TestMatchSectionHeader(t *testing.T) {
	cases := []struct {
		line string
		want types.SectionTag
		ok   bool
	}{
		{"### PERSONAL INFORMATION", types.SectionPersonalInfo, true},
		{"## Education", types.SectionEducation, true},
		{"**EXPERIENCE**", types.SectionExperience, true},
		{"Skills:", types.SectionSkills, true},
		{"projects", types.SectionProjects, true},
		{"**Acme Corp**", types.SectionUnknown, false},
		{"**Skillsoft**", types.SectionUnknown, false},
		{"**Project Lead Inc**", types.SectionUnknown, false},
		{"**University of Excellence, Springfield, IL**", types.SectionUnknown, false},
		{"random text mentioning education history of the company", types.SectionUnknown, false},
		{"### HOBBIES", types.SectionUnknown, false},
	}
	for _, tc := range cases {
		tag, ok := matchSectionHeader(tc.line)
		assert.Equal(t, tc.ok, ok, "行: %q", tc.line)
		if tc.ok {
			assert.Equal(t, tc.want, tag, "行: %q", tc.line)
		}
	}
}
