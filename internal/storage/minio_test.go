package storage

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKeyFor(t *testing.T) {
	key := objectKeyFor("/some/dir/resume.pdf")
	parts := strings.Split(key, "/")
	require.Len(t, parts, 3, "对象键格式: <日期>/<uuid>/<文件名>")

	_, err := uuid.Parse(parts[1])
	assert.NoError(t, err, "中段必须是合法UUID")
	assert.Equal(t, "resume.pdf", parts[2], "只保留文件名，不带源目录")

	// 同名文件生成互不相同的键
	assert.NotEqual(t, key, objectKeyFor("/some/dir/resume.pdf"))
}

func TestContentTypeFor(t *testing.T) {
	cases := map[string]string{
		".pdf":  "application/pdf",
		".PDF":  "application/pdf",
		".txt":  "text/plain",
		".json": "application/json",
		".xyz":  "application/octet-stream",
		"":      "application/octet-stream",
	}
	for ext, want := range cases {
		assert.Equal(t, want, contentTypeFor(ext), "扩展名: %q", ext)
	}
}
