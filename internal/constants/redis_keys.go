package constants

// Redis Key 常量
// 统一命名规范: resume:{entity}:{detail}
const (
	// AppPrefix 所有Redis Key的统一应用前缀
	AppPrefix = "resume"

	// RawFileMD5SetKey 原始文件MD5去重集合 (SET)
	// 格式: resume:dedup:raw_md5
	RawFileMD5SetKey = AppPrefix + ":dedup:raw_md5"

	// ParsedTextMD5SetKey 提取文本MD5去重集合 (SET)
	// 格式: resume:dedup:text_md5
	ParsedTextMD5SetKey = AppPrefix + ":dedup:text_md5"
)
