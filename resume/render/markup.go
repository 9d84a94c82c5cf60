package render

import (
	"regexp"
	"strings"
)

// inlinePattern matches **bold**, [text](url) and *italic*, in that priority.
var inlinePattern = regexp.MustCompile(`\*\*(.+?)\*\*|\[([^\]]+)\]\(([^)\s]+)\)|\*([^*\s][^*]*?)\*`)

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

var pageBreakPattern = regexp.MustCompile(`^-{3,}$`)

// parseInline splits text into runs, layering markup on top of base.
func parseInline(text string, base RunStyle) []run {
	var out []run
	last := 0
	for _, m := range inlinePattern.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			out = append(out, run{text: text[last:m[0]], style: base})
		}
		switch {
		case m[2] >= 0:
			style := base
			style.Bold = true
			out = append(out, run{text: text[m[2]:m[3]], style: style})
		case m[4] >= 0:
			out = append(out, run{text: text[m[4]:m[5]], style: base, link: text[m[6]:m[7]]})
		case m[8] >= 0:
			style := base
			style.Italic = true
			out = append(out, run{text: text[m[8]:m[9]], style: style})
		}
		last = m[1]
	}
	if last < len(text) {
		out = append(out, run{text: text[last:], style: base})
	}
	return out
}

// linkEmails turns every e-mail address in text into a mailto hyperlink.
func linkEmails(text string, base RunStyle) []run {
	var out []run
	last := 0
	for _, m := range emailPattern.FindAllStringIndex(text, -1) {
		if m[0] > last {
			out = append(out, run{text: text[last:m[0]], style: base})
		}
		addr := text[m[0]:m[1]]
		out = append(out, run{text: addr, style: base, link: "mailto:" + addr})
		last = m[1]
	}
	if last < len(text) {
		out = append(out, run{text: text[last:], style: base})
	}
	return out
}

// bulletText reports whether line is a list item and returns its text.
func bulletText(line string) (string, bool) {
	for _, prefix := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):]), true
		}
	}
	return "", false
}

// headingText reports the markdown heading level of line (1-3) and its text.
func headingText(line string) (int, string, bool) {
	for level, prefix := range []string{"# ", "## ", "### "} {
		if strings.HasPrefix(line, prefix) {
			return level + 1, strings.TrimSpace(line[len(prefix):]), true
		}
	}
	return 0, "", false
}

// writeMarkdown renders a small markdown subset: headings, bullets, page
// breaks and inline emphasis or links. Blank lines are skipped.
func (d *document) writeMarkdown(text string) {
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if pageBreakPattern.MatchString(line) {
			d.pageBreak()
			continue
		}
		if level, heading, ok := headingText(line); ok {
			d.heading(level, heading)
			continue
		}
		if item, ok := bulletText(line); ok {
			d.bullet(parseInline(item, RunStyle{})...)
			continue
		}
		d.paragraph(paragraphOptions{}, parseInline(line, RunStyle{})...)
	}
}
