package render

import "strings"

// RenderCheatsheet converts the interview cheatsheet markdown to a document.
func RenderCheatsheet(markdown string) ([]byte, error) {
	if strings.TrimSpace(markdown) == "" {
		return nil, ErrNothingToRender
	}
	d := newDocument(cheatsheetPage)
	d.writeMarkdown(markdown)
	return d.Bytes()
}
