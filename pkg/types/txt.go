package types

import "strings"

// ============================================================================
//                              TXT 记录编解码
// ============================================================================

// TXT 记录按 RFC 6763 约定为 "key=value" 字符串列表。
// 单条记录最大 255 字节（RFC 1035），超长条目在编码时被丢弃。
const maxTXTLen = 255

// EncodeText 将键值对编码为 TXT 记录列表
//
// 空 key 和超长条目被丢弃；空 value 编码为裸 key（布尔属性）。
func EncodeText(text map[string]string) []string {
	if len(text) == 0 {
		return nil
	}

	out := make([]string, 0, len(text))
	for k, v := range text {
		if k == "" {
			continue
		}
		entry := k
		if v != "" {
			entry = k + "=" + v
		}
		if len(entry) > maxTXTLen {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// DecodeText 将 TXT 记录列表解析为键值对
//
// 裸 key 解析为空 value；重复 key 以后出现的为准；
// 空条目被忽略。
func DecodeText(records []string) map[string]string {
	if len(records) == 0 {
		return nil
	}

	text := make(map[string]string, len(records))
	for _, record := range records {
		if record == "" {
			continue
		}
		key, value, _ := strings.Cut(record, "=")
		if key == "" {
			continue
		}
		text[key] = value
	}
	return text
}
