package epub

import (
	"fmt"
	"strings"
)

// generateNavigation creates the nav.xhtml navigation document.
func (b *Builder) generateNavigation() string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head>
  <title>Table of Contents</title>
  <link rel="stylesheet" type="text/css" href="styles/style.css"/>
</head>
<body>
  <nav epub:type="toc" id="toc">
    <h1>Table of Contents</h1>
    <ol>
`)

	for _, ch := range b.chapters {
		sb.WriteString(fmt.Sprintf("      <li><a href=\"chapters/%s.xhtml\">%s</a></li>\n",
			ch.ID, escapeXML(ch.Title)))
	}

	sb.WriteString(`    </ol>
  </nav>
</body>
</html>
`)

	return sb.String()
}

// generateNCX creates the toc.ncx document for ePub 2 reader compatibility.
func (b *Builder) generateNCX() string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <head>
`)
	sb.WriteString(fmt.Sprintf("    <meta name=\"dtb:uid\" content=\"%s\"/>\n", b.identifier()))
	sb.WriteString(`    <meta name="dtb:depth" content="1"/>
  </head>
`)
	sb.WriteString(fmt.Sprintf("  <docTitle><text>%s</text></docTitle>\n", escapeXML(b.book.Title)))
	sb.WriteString("  <navMap>\n")

	for i, ch := range b.chapters {
		sb.WriteString(fmt.Sprintf(`    <navPoint id="nav_%s" playOrder="%d">
      <navLabel><text>%s</text></navLabel>
      <content src="chapters/%s.xhtml"/>
    </navPoint>
`, ch.ID, i+1, escapeXML(ch.Title), ch.ID))
	}

	sb.WriteString("  </navMap>\n</ncx>\n")

	return sb.String()
}
