package content

import "strings"

// LinksDelimiter separates page text from the link block inside an
// extraction document. Every URL the model is allowed to cite appears
// verbatim below this line.
const LinksDelimiter = "--- ALL LINKS ---"

// BuildDocument concatenates cleaned page text with the sorted link
// sequence into the single unit of input handed to the model. With no
// links the text is returned as-is.
func BuildDocument(cleanText string, sortedLinks []string) string {
	if len(sortedLinks) == 0 {
		return cleanText
	}
	var b strings.Builder
	b.WriteString(cleanText)
	b.WriteString("\n\n")
	b.WriteString(LinksDelimiter)
	b.WriteByte('\n')
	b.WriteString(strings.Join(sortedLinks, "\n"))
	return b.String()
}
