package parser

// 提取提示词与回复JSON校验所需的契约定义
// 章节标题与JSON键名必须与规范记录的解析端保持严格一致，改动任何一侧
// 都要同步另一侧

// extractionSystemPrompt 固定的提取指令
// 允许两种回复形态：按章节标题组织的markdown，或单个符合目标结构的JSON对象
const extractionSystemPrompt = `You are a resume analysis expert.

Analyze the resume text provided by the user and extract key information.

Respond in ONE of the following two formats:

Format A - structured markdown with exactly these section headings:

### PERSONAL INFORMATION
- **Full name:** ...
- **Email:** ...
- **Phone number:** ...
- **Location:** ...
- **LinkedIn profile:** ...

### EDUCATION
For each degree: a bold "**Institution, Location**" line followed by
"- **Degree:** ...", "- **Dates:** ...", "- **GPA:** ..." and
"- **Relevant coursework:** ..." lines.

### EXPERIENCE
For each position: a bold "**Company**" line followed by
"- **Title:** ...", "- **Dates:** ...", "- **Location:** ..." lines and
one bullet line per key achievement.

### SKILLS
- **Technical skills:** comma, separated, list
- **Soft skills:** comma, separated, list
- **Languages:** comma, separated, list
- **Tools:** comma, separated, list

### PROJECTS
For each project: "- **Project:** name" followed by
"- **Description:** ...", "- **Technologies used:** ..." and "- **URL:** ..." lines.

Format B - a single JSON object with exactly these keys:
{
  "personal_info": {"name": "", "email": "", "phone": "", "location": "", "linkedin": ""},
  "education": [{"institution": "", "location": "", "degree": "", "dates": "", "gpa": "",
                 "coursework": [], "certifications": [{"name": "", "date": ""}]}],
  "experience": [{"company": "", "title": "", "dates": "", "location": "", "achievements": []}],
  "skills": {"technical": [], "soft": [], "languages": [], "tools": []},
  "projects": [{"name": "", "description": "", "technologies": [], "url": ""}]
}

Use empty strings and empty arrays for information that is not present.
Do not invent information. Do not add any commentary outside the chosen format.`

// resumeRecordSchemaJSON 规范记录的JSON Schema，用于校验JSON形态的回复
// 五个顶层键必须齐全，类型必须匹配；子字段允许缺省（解析后统一补齐默认值）
const resumeRecordSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["personal_info", "education", "experience", "skills", "projects"],
  "properties": {
    "personal_info": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "email": {"type": "string"},
        "phone": {"type": "string"},
        "location": {"type": "string"},
        "linkedin": {"type": "string"}
      }
    },
    "education": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "institution": {"type": "string"},
          "location": {"type": "string"},
          "degree": {"type": "string"},
          "dates": {"type": "string"},
          "gpa": {"type": "string"},
          "coursework": {"type": "array", "items": {"type": "string"}},
          "certifications": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "name": {"type": "string"},
                "date": {"type": "string"}
              }
            }
          }
        }
      }
    },
    "experience": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "company": {"type": "string"},
          "title": {"type": "string"},
          "dates": {"type": "string"},
          "location": {"type": "string"},
          "achievements": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "skills": {
      "type": "object",
      "properties": {
        "technical": {"type": "array", "items": {"type": "string"}},
        "soft": {"type": "array", "items": {"type": "string"}},
        "languages": {"type": "array", "items": {"type": "string"}},
        "tools": {"type": "array", "items": {"type": "string"}}
      }
    },
    "projects": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "description": {"type": "string"},
          "technologies": {"type": "array", "items": {"type": "string"}},
          "url": {"type": "string"}
        }
      }
    }
  }
}`
