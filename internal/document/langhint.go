package document

import (
	"path/filepath"
	"strings"
)

var languageHints = map[string]string{
	"py":       "python",
	"js":       "javascript",
	"ts":       "typescript",
	"jsx":      "jsx",
	"tsx":      "tsx",
	"java":     "java",
	"c":        "c",
	"cpp":      "cpp",
	"cs":       "csharp",
	"php":      "php",
	"rb":       "ruby",
	"go":       "go",
	"rs":       "rust",
	"kt":       "kotlin",
	"swift":    "swift",
	"m":        "objectivec",
	"scala":    "scala",
	"sh":       "bash",
	"bash":     "bash",
	"zsh":      "zsh",
	"fish":     "fish",
	"ps1":      "powershell",
	"r":        "r",
	"sql":      "sql",
	"html":     "html",
	"htm":      "html",
	"xml":      "xml",
	"css":      "css",
	"scss":     "scss",
	"sass":     "sass",
	"less":     "less",
	"json":     "json",
	"yaml":     "yaml",
	"yml":      "yaml",
	"toml":     "toml",
	"ini":      "ini",
	"cfg":      "ini",
	"conf":     "conf",
	"md":       "markdown",
	"markdown": "markdown",
	"rst":      "rst",
	"tex":      "latex",
}

// LanguageHint returns the Markdown code fence label for path's extension,
// or "" when the extension is unknown.
func LanguageHint(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return ""
	}
	return languageHints[strings.ToLower(ext)]
}
