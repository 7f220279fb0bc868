package translator

import (
	"fmt"
	"strings"
)

// Section markers the model is instructed to emit. The parser slices the
// raw response on these exact literals.
const (
	MarkerTranslation       = "[翻译]"
	MarkerQuotedTranslation = "[引文翻译]"
	MarkerComment           = "[锐评]"
)

const defaultTargetLang = "中文"

// buildPrompt renders one of the two fixed templates: with or without a
// quoted-post section.
func buildPrompt(text string, quotedText *string, targetLang string) string {
	if targetLang == "" {
		targetLang = defaultTargetLang
	}
	var b strings.Builder
	fmt.Fprintf(&b, "你是一位资深的社交媒体翻译编辑。请把下面的帖子忠实地翻译成%s。\n", targetLang)
	b.WriteString("要求:\n")
	b.WriteString("1. 保留技术术语、@提及和 #话题标签原文,不要翻译它们。\n")
	b.WriteString("2. 语气与原文一致,不增删内容。\n")
	b.WriteString("3. 翻译之后,写一句简短犀利的编辑点评。\n")

	if quotedText != nil && *quotedText != "" {
		b.WriteString(fmt.Sprintf("\n输出格式,严格使用以下三个标记:\n%s\n<帖子译文>\n%s\n<被引用帖子的译文>\n%s\n<点评>\n",
			MarkerTranslation, MarkerQuotedTranslation, MarkerComment))
		fmt.Fprintf(&b, "\n帖子原文:\n%s\n", text)
		fmt.Fprintf(&b, "\n被引用的帖子原文:\n%s\n", *quotedText)
		return b.String()
	}

	b.WriteString(fmt.Sprintf("\n输出格式,严格使用以下两个标记:\n%s\n<帖子译文>\n%s\n<点评>\n",
		MarkerTranslation, MarkerComment))
	fmt.Fprintf(&b, "\n帖子原文:\n%s\n", text)
	return b.String()
}
