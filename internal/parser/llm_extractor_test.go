package parser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockChatModel 用于测试的 model.ToolCallingChatModel 模拟实现
// 按顺序返回预设的回复或错误
type mockChatModel struct {
	replies          []string
	errs             []error
	callIndex        int
	receivedMessages [][]*schema.Message
}

func (m *mockChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	received := make([]*schema.Message, len(input))
	copy(received, input)
	m.receivedMessages = append(m.receivedMessages, received)

	idx := m.callIndex
	m.callIndex++
	if idx < len(m.errs) && m.errs[idx] != nil {
		return nil, m.errs[idx]
	}
	if idx >= len(m.replies) {
		return nil, errors.New("mock没有更多预设回复")
	}
	return schema.AssistantMessage(m.replies[idx], nil), nil
}

func (m *mockChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("mock不支持流式输出")
}

func (m *mockChatModel) BindTools(tools []*schema.ToolInfo) error {
	return nil
}

func (m *mockChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

var _ model.ToolCallingChatModel = (*mockChatModel)(nil)

const sampleRecordJSON = `{
  "personal_info": {"name": "Jane Smith", "email": "jane.smith@example.com", "phone": "+1 555 0100", "location": "Springfield, IL", "linkedin": "linkedin.com/in/janesmith"},
  "education": [{"institution": "University of Excellence", "location": "Springfield, IL", "degree": "Bachelor of Science in Computer Science", "dates": "2015 - 2019", "gpa": "3.8", "coursework": ["Algorithms", "Databases", "Operating Systems"], "certifications": []}],
  "experience": [{"company": "Acme Corp", "title": "Software Engineer", "dates": "2019 - 2022", "location": "Chicago, IL", "achievements": ["Built the billing pipeline", "Reduced API latency by 40%"]}],
  "skills": {"technical": ["Go", "Python", "SQL"], "soft": ["Communication", "Leadership"], "languages": ["English", "Spanish"], "tools": ["Docker", "Kubernetes"]},
  "projects": [{"name": "Resume Parser", "description": "Extracts structured data from resumes", "technologies": ["Go", "Tesseract"], "url": "github.com/janesmith/parser"}]
}`

func TestModelAssistedExtractor_JSONReply(t *testing.T) {
	t.Run("裸JSON", func(t *testing.T) {
		mock := &mockChatModel{replies: []string{sampleRecordJSON}}
		extractor, err := NewModelAssistedExtractor(mock)
		require.NoError(t, err)

		record, err := extractor.Parse(context.Background(), "resume text")
		require.NoError(t, err)
		assert.Equal(t, "Jane Smith", record.PersonalInfo.Name)
		require.Len(t, record.Education, 1)
		assert.Equal(t, "University of Excellence", record.Education[0].Institution)
		assert.NotNil(t, record.Education[0].Certifications, "缺省的序列字段应补齐为空切片")
	})

	t.Run("代码块包裹的JSON", func(t *testing.T) {
		mock := &mockChatModel{replies: []string{"Here is the result:\n```json\n" + sampleRecordJSON + "\n```\nDone."}}
		extractor, err := NewModelAssistedExtractor(mock)
		require.NoError(t, err)

		record, err := extractor.Parse(context.Background(), "resume text")
		require.NoError(t, err)
		assert.Equal(t, "Acme Corp", record.Experience[0].Company)
	})

	t.Run("省略空数组的JSON", func(t *testing.T) {
		// LLM经常省略空数组，Normalize后序列字段必须非nil
		mock := &mockChatModel{replies: []string{`{
			"personal_info": {"name": "John"},
			"education": [],
			"experience": [],
			"skills": {},
			"projects": []
		}`}}
		extractor, err := NewModelAssistedExtractor(mock)
		require.NoError(t, err)

		record, err := extractor.Parse(context.Background(), "resume text")
		require.NoError(t, err)
		assert.NotNil(t, record.Skills.Technical)
		assert.NotNil(t, record.Skills.Soft)
		assert.NotNil(t, record.Skills.Languages)
		assert.NotNil(t, record.Skills.Tools)
	})
}

func TestModelAssistedExtractor_MarkdownReply(t *testing.T) {
	mock := &mockChatModel{replies: []string{sampleResumeMarkdown}}
	extractor, err := NewModelAssistedExtractor(mock)
	require.NoError(t, err)

	record, err := extractor.Parse(context.Background(), "resume text")
	require.NoError(t, err, "标题分隔的markdown回复应走规则解析路径")
	assert.Equal(t, "Jane Smith", record.PersonalInfo.Name)
	require.Len(t, record.Experience, 2)
	assert.Equal(t, "Beta LLC", record.Experience[1].Company)
}

func TestModelAssistedExtractor_ReplyFormatEquivalence(t *testing.T) {
	// 同一份简历的JSON回复与markdown回复必须产出键名与结构一致的记录
	jsonMock := &mockChatModel{replies: []string{sampleRecordJSON}}
	jsonExtractor, err := NewModelAssistedExtractor(jsonMock)
	require.NoError(t, err)
	fromJSON, err := jsonExtractor.Parse(context.Background(), "resume text")
	require.NoError(t, err)

	mdMock := &mockChatModel{replies: []string{sampleResumeMarkdown}}
	mdExtractor, err := NewModelAssistedExtractor(mdMock)
	require.NoError(t, err)
	fromMarkdown, err := mdExtractor.Parse(context.Background(), "resume text")
	require.NoError(t, err)

	assert.Equal(t, fromJSON.PersonalInfo, fromMarkdown.PersonalInfo)
	assert.Equal(t, fromJSON.Skills, fromMarkdown.Skills)
	assert.Equal(t, fromJSON.Projects, fromMarkdown.Projects)
	require.Len(t, fromMarkdown.Education, len(fromJSON.Education))
	assert.Equal(t, fromJSON.Education[0].Institution, fromMarkdown.Education[0].Institution)
	assert.Equal(t, fromJSON.Education[0].Coursework, fromMarkdown.Education[0].Coursework)
}

func TestModelAssistedExtractor_MarkdownWithJSONFragment(t *testing.T) {
	// markdown回复的正文里夹带花括号片段（如项目描述中的配置示例）时，
	// 片段校验失败后应回退到规则解析，而不是整个回复按服务失败处理
	reply := sampleResumeMarkdown + "\n- **Description:** CLI tool reading {\"verbose\": true} style config"
	mock := &mockChatModel{replies: []string{reply}}
	extractor, err := NewModelAssistedExtractor(mock)
	require.NoError(t, err)

	record, err := extractor.Parse(context.Background(), "resume text")
	require.NoError(t, err, "带章节标题的回复不应因正文中的JSON片段而失败")
	assert.Equal(t, "Jane Smith", record.PersonalInfo.Name)
	require.Len(t, record.Experience, 2)
}

// nilReplyChatModel 模拟行为异常的模型实现: 无错误但消息为nil
type nilReplyChatModel struct {
	mockChatModel
}

func (m *nilReplyChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	return nil, nil
}

func TestModelAssistedExtractor_NilReplyMessage(t *testing.T) {
	extractor, err := NewModelAssistedExtractor(&nilReplyChatModel{})
	require.NoError(t, err)

	_, err = extractor.Parse(context.Background(), "resume text")
	assert.ErrorIs(t, err, ErrServiceFailure, "空消息应视为服务失败而不是崩溃")
}

func TestModelAssistedExtractor_BadPayload(t *testing.T) {
	t.Run("既非JSON也无章节标题", func(t *testing.T) {
		mock := &mockChatModel{replies: []string{"I cannot process this resume, sorry."}}
		extractor, err := NewModelAssistedExtractor(mock)
		require.NoError(t, err)

		_, err = extractor.Parse(context.Background(), "resume text")
		assert.ErrorIs(t, err, ErrServiceFailure, "无法解析的回复视为服务失败")
	})

	t.Run("JSON未通过Schema校验", func(t *testing.T) {
		// education必须是数组
		mock := &mockChatModel{replies: []string{`{
			"personal_info": {},
			"education": "none",
			"experience": [],
			"skills": {},
			"projects": []
		}`}}
		extractor, err := NewModelAssistedExtractor(mock)
		require.NoError(t, err)

		_, err = extractor.Parse(context.Background(), "resume text")
		assert.ErrorIs(t, err, ErrServiceFailure)
	})

	t.Run("JSON缺少必需键", func(t *testing.T) {
		mock := &mockChatModel{replies: []string{`{"personal_info": {}}`}}
		extractor, err := NewModelAssistedExtractor(mock)
		require.NoError(t, err)

		_, err = extractor.Parse(context.Background(), "resume text")
		assert.ErrorIs(t, err, ErrServiceFailure, "五个顶层键必须齐全")
	})
}

func TestModelAssistedExtractor_EmptyInput(t *testing.T) {
	mock := &mockChatModel{}
	extractor, err := NewModelAssistedExtractor(mock)
	require.NoError(t, err)

	_, err = extractor.Parse(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, mock.receivedMessages, "空输入不应触发任何服务调用")
}

func TestModelAssistedExtractor_Retry(t *testing.T) {
	t.Run("网络类错误重试后成功", func(t *testing.T) {
		mock := &mockChatModel{
			errs:    []error{errors.New("connection refused"), nil},
			replies: []string{"", sampleRecordJSON},
		}
		extractor, err := NewModelAssistedExtractor(mock,
			WithLLMRetries(2, time.Millisecond))
		require.NoError(t, err)

		record, err := extractor.Parse(context.Background(), "resume text")
		require.NoError(t, err, "可重试错误应在退避后重试")
		assert.Equal(t, "Jane Smith", record.PersonalInfo.Name)
		assert.Equal(t, 2, mock.callIndex, "首次失败后应恰好重试一次")
	})

	t.Run("非网络类错误不重试", func(t *testing.T) {
		mock := &mockChatModel{
			errs: []error{errors.New("invalid api key")},
		}
		extractor, err := NewModelAssistedExtractor(mock,
			WithLLMRetries(3, time.Millisecond))
		require.NoError(t, err)

		_, err = extractor.Parse(context.Background(), "resume text")
		assert.ErrorIs(t, err, ErrServiceFailure)
		assert.Equal(t, 1, mock.callIndex, "鉴权类错误不应重试")
	})
}

func TestModelAssistedExtractor_PromptMessages(t *testing.T) {
	mock := &mockChatModel{replies: []string{sampleRecordJSON}}
	extractor, err := NewModelAssistedExtractor(mock)
	require.NoError(t, err)

	_, err = extractor.Parse(context.Background(), "THE RESUME TEXT")
	require.NoError(t, err)
	require.Len(t, mock.receivedMessages, 1)
	messages := mock.receivedMessages[0]
	require.Len(t, messages, 2)
	assert.Equal(t, schema.RoleType("system"), messages[0].Role)
	assert.Contains(t, messages[0].Content, "resume analysis expert")
	assert.Equal(t, schema.RoleType("user"), messages[1].Role)
	assert.Equal(t, "THE RESUME TEXT", messages[1].Content)
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"代码块优先", "text ```json\n{\"a\": 1}\n``` tail", `{"a": 1}`},
		{"花括号配对回退", `prefix {"a": {"b": 2}} suffix`, `{"a": {"b": 2}}`},
		{"无JSON", "no braces here", ""},
		{"未闭合", `broken {"a": 1`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractJSON(tc.in))
		})
	}
}
