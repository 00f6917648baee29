package xcontent

import (
	"path"
	"strings"
)

type family int

const (
	familySignature family = iota + 1
	familyText
)

type kind struct {
	mime   string
	family family
}

// knownTypes 扩展名到期望 MIME 的映射，键为带点的小写扩展名。
var knownTypes = map[string]kind{
	".png":  {"image/png", familySignature},
	".jpg":  {"image/jpeg", familySignature},
	".jpeg": {"image/jpeg", familySignature},
	".gif":  {"image/gif", familySignature},
	".webp": {"image/webp", familySignature},
	".bmp":  {"image/bmp", familySignature},
	".tif":  {"image/tiff", familySignature},
	".tiff": {"image/tiff", familySignature},
	".pdf":  {"application/pdf", familySignature},
	".zip":  {"application/zip", familySignature},
	".gz":   {"application/gzip", familySignature},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", familySignature},
	".xlsx": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", familySignature},
	".pptx": {"application/vnd.openxmlformats-officedocument.presentationml.presentation", familySignature},
	".mp3":  {"audio/mpeg", familySignature},
	".mp4":  {"video/mp4", familySignature},
	".wav":  {"audio/wav", familySignature},

	".txt":  {"text/plain", familyText},
	".md":   {"text/markdown", familyText},
	".csv":  {"text/csv", familyText},
	".tsv":  {"text/tab-separated-values", familyText},
	".json": {"application/json", familyText},
	".yaml": {"application/yaml", familyText},
	".yml":  {"application/yaml", familyText},
	".xml":  {"text/xml", familyText},
	".html": {"text/html", familyText},
	".htm":  {"text/html", familyText},
	".log":  {"text/plain", familyText},
}

// DefaultExtensions 返回内置表中的全部扩展名。
func DefaultExtensions() []string {
	out := make([]string, 0, len(knownTypes))
	for ext := range knownTypes {
		out = append(out, ext)
	}
	return out
}

// Extension 返回文件名的小写扩展名（含点），"\" 视为分隔符。
func Extension(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	return strings.ToLower(path.Ext(base))
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
