package epub

import "strings"

// generateChapterXHTML renders one page of OCR text as an XHTML document.
// Paragraphs are split on blank lines; the page number becomes a heading.
func generateChapterXHTML(ch Chapter) string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <title>`)
	sb.WriteString(escapeXML(ch.Title))
	sb.WriteString(`</title>
  <link rel="stylesheet" type="text/css" href="../styles/style.css"/>
</head>
<body>
`)

	sb.WriteString("<h2>")
	sb.WriteString(escapeXML(ch.Title))
	sb.WriteString("</h2>\n")

	for _, para := range splitParagraphs(ch.Text) {
		sb.WriteString("<p>")
		sb.WriteString(escapeText(para))
		sb.WriteString("</p>\n")
	}

	sb.WriteString("</body>\n</html>\n")

	return sb.String()
}

// splitParagraphs breaks page text into paragraphs on blank lines.
func splitParagraphs(text string) []string {
	var paras []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			paras = append(paras, block)
		}
	}
	return paras
}

// escapeText escapes content for XHTML body text. Ampersands must be
// replaced before angle brackets so existing entities are not mangled twice.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
