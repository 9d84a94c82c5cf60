package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	wmlNamespace  = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	relNamespace  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	hyperlinkType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
)

// run is one span of uniformly formatted text. A non-empty link makes it an
// external hyperlink.
type run struct {
	text  string
	style RunStyle
	link  string
}

type paragraphOptions struct {
	style        string // Heading1..3, ListBullet
	align        string
	rightTab     bool
	borderBottom bool
	spaceBefore  int
	spaceAfter   int
}

// document accumulates WordprocessingML paragraphs and writes them out as a
// minimal .docx package.
type document struct {
	page  pageSetup
	body  bytes.Buffer
	links []string
}

func newDocument(page pageSetup) *document {
	return &document{page: page}
}

func (d *document) paragraph(opts paragraphOptions, runs ...run) {
	d.body.WriteString("<w:p>")
	d.writeParagraphProps(opts)
	for _, r := range runs {
		d.writeRun(r)
	}
	d.body.WriteString("</w:p>")
}

func (d *document) heading(level int, text string) {
	if level < 1 {
		level = 1
	}
	if level > 3 {
		level = 3
	}
	d.paragraph(paragraphOptions{style: "Heading" + strconv.Itoa(level)}, parseInline(text, RunStyle{})...)
}

func (d *document) bullet(runs ...run) {
	d.paragraph(paragraphOptions{style: "ListBullet"}, runs...)
}

func (d *document) pageBreak() {
	d.body.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
}

func (d *document) writeParagraphProps(opts paragraphOptions) {
	var props strings.Builder
	if opts.style != "" {
		fmt.Fprintf(&props, `<w:pStyle w:val="%s"/>`, opts.style)
	}
	if opts.style == "ListBullet" {
		props.WriteString(`<w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr>`)
	}
	if opts.borderBottom {
		props.WriteString(`<w:pBdr><w:bottom w:val="single" w:sz="4" w:space="1" w:color="auto"/></w:pBdr>`)
	}
	if opts.rightTab {
		fmt.Fprintf(&props, `<w:tabs><w:tab w:val="right" w:pos="%d"/></w:tabs>`, rightTabPos)
	}
	if opts.spaceBefore > 0 || opts.spaceAfter > 0 {
		fmt.Fprintf(&props, `<w:spacing w:before="%d" w:after="%d"/>`, opts.spaceBefore, opts.spaceAfter)
	}
	if opts.align != "" {
		fmt.Fprintf(&props, `<w:jc w:val="%s"/>`, opts.align)
	}
	if props.Len() > 0 {
		d.body.WriteString("<w:pPr>")
		d.body.WriteString(props.String())
		d.body.WriteString("</w:pPr>")
	}
}

func (d *document) writeRun(r run) {
	if r.text == "" {
		return
	}
	if r.link != "" {
		id := d.linkID(r.link)
		fmt.Fprintf(&d.body, `<w:hyperlink r:id="%s">`, id)
		style := r.style
		style.Underline = true
		if style.Color == "" {
			style.Color = LinkColor
		}
		d.writeTextRun(r.text, style)
		d.body.WriteString("</w:hyperlink>")
		return
	}
	d.writeTextRun(r.text, r.style)
}

// writeTextRun emits a run, turning tab characters into <w:tab/>.
func (d *document) writeTextRun(text string, style RunStyle) {
	d.body.WriteString("<w:r>")
	writeRunProps(&d.body, style)
	for i, part := range strings.Split(text, "\t") {
		if i > 0 {
			d.body.WriteString("<w:tab/>")
		}
		if part == "" {
			continue
		}
		d.body.WriteString(`<w:t xml:space="preserve">`)
		_ = xml.EscapeText(&d.body, []byte(part))
		d.body.WriteString("</w:t>")
	}
	d.body.WriteString("</w:r>")
}

func writeRunProps(buf *bytes.Buffer, style RunStyle) {
	if style == (RunStyle{}) {
		return
	}
	buf.WriteString("<w:rPr>")
	if style.Bold {
		buf.WriteString("<w:b/>")
	}
	if style.Italic {
		buf.WriteString("<w:i/>")
	}
	if style.Color != "" {
		fmt.Fprintf(buf, `<w:color w:val="%s"/>`, style.Color)
	}
	if style.Size > 0 {
		fmt.Fprintf(buf, `<w:sz w:val="%d"/>`, style.Size)
	}
	if style.Underline {
		buf.WriteString(`<w:u w:val="single"/>`)
	}
	buf.WriteString("</w:rPr>")
}

// linkID returns the relationship id for target, registering it on first use.
// rId1..rId2 are reserved for styles and numbering.
func (d *document) linkID(target string) string {
	for i, existing := range d.links {
		if existing == target {
			return "rId" + strconv.Itoa(i+3)
		}
	}
	d.links = append(d.links, target)
	return "rId" + strconv.Itoa(len(d.links)+2)
}

func (d *document) documentXML() string {
	var out strings.Builder
	out.WriteString(xml.Header)
	fmt.Fprintf(&out, `<w:document xmlns:w="%s" xmlns:r="%s"><w:body>`, wmlNamespace, relNamespace)
	out.Write(d.body.Bytes())
	m := d.page.Margins
	fmt.Fprintf(&out, `<w:sectPr><w:pgSz w:w="12240" w:h="15840"/><w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="720" w:footer="720" w:gutter="0"/></w:sectPr>`, m[0], m[1], m[2], m[3])
	out.WriteString("</w:body></w:document>")
	return out.String()
}

func (d *document) relationshipsXML() string {
	var out strings.Builder
	out.WriteString(xml.Header)
	out.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	out.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`)
	out.WriteString(`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>`)
	for i, target := range d.links {
		fmt.Fprintf(&out, `<Relationship Id="rId%d" Type="%s" Target="%s" TargetMode="External"/>`, i+3, hyperlinkType, escapeAttr(target))
	}
	out.WriteString("</Relationships>")
	return out.String()
}

func (d *document) stylesXML() string {
	heading := func(id string, size int) string {
		return fmt.Sprintf(`<w:style w:type="paragraph" w:styleId="%[1]s"><w:name w:val="heading %[2]s"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/><w:pPr><w:keepNext/><w:spacing w:before="240" w:after="60"/></w:pPr><w:rPr><w:b/><w:color w:val="%[3]s"/><w:sz w:val="%[4]d"/></w:rPr></w:style>`,
			id, strings.TrimPrefix(id, "Heading"), HeadingColor, size)
	}
	var out strings.Builder
	out.WriteString(xml.Header)
	fmt.Fprintf(&out, `<w:styles xmlns:w="%s">`, wmlNamespace)
	fmt.Fprintf(&out, `<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="%[1]s" w:hAnsi="%[1]s" w:cs="%[1]s"/><w:sz w:val="%[2]d"/></w:rPr></w:rPrDefault><w:pPrDefault><w:pPr><w:spacing w:before="0" w:after="0" w:line="%[3]d" w:lineRule="auto"/></w:pPr></w:pPrDefault></w:docDefaults>`,
		escapeAttr(d.page.Font), d.page.FontSize, d.page.Spacing)
	out.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style>`)
	out.WriteString(heading("Heading1", 32))
	out.WriteString(heading("Heading2", 26))
	out.WriteString(heading("Heading3", 24))
	out.WriteString(`<w:style w:type="paragraph" w:styleId="ListBullet"><w:name w:val="List Bullet"/><w:basedOn w:val="Normal"/><w:pPr><w:numPr><w:numId w:val="1"/></w:numPr><w:ind w:left="360" w:hanging="360"/></w:pPr></w:style>`)
	out.WriteString(`<w:style w:type="character" w:styleId="Hyperlink"><w:name w:val="Hyperlink"/><w:rPr><w:color w:val="` + LinkColor + `"/><w:u w:val="single"/></w:rPr></w:style>`)
	out.WriteString("</w:styles>")
	return out.String()
}

func numberingXML() string {
	return xml.Header + `<w:numbering xmlns:w="` + wmlNamespace + `">` +
		`<w:abstractNum w:abstractNumId="0"><w:multiLevelType w:val="singleLevel"/><w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="bullet"/><w:lvlText w:val="•"/><w:lvlJc w:val="left"/><w:pPr><w:ind w:left="360" w:hanging="360"/></w:pPr></w:lvl></w:abstractNum>` +
		`<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num></w:numbering>`
}

const contentTypesXML = xml.Header + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`<Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>` +
	`</Types>`

const packageRelsXML = xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

// Bytes validates the body and zips the package.
func (d *document) Bytes() ([]byte, error) {
	documentXML := d.documentXML()
	if err := validateDocumentXMLStructure(documentXML); err != nil {
		return nil, err
	}

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{"word/document.xml", documentXML},
		{"word/_rels/document.xml.rels", d.relationshipsXML()},
		{"word/styles.xml", d.stylesXML()},
		{"word/numbering.xml", numberingXML()},
	}

	var output bytes.Buffer
	writer := zip.NewWriter(&output)
	for _, part := range parts {
		if err := writeZipFile(writer, part.name, []byte(part.content)); err != nil {
			_ = writer.Close()
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}

func writeZipFile(writer *zip.Writer, name string, content []byte) error {
	dst, err := writer.CreateHeader(&zip.FileHeader{Name: normalizeZipName(name), Method: zip.Deflate})
	if err != nil {
		return err
	}
	_, err = dst.Write(content)
	return err
}

func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func normalizeZipName(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}

func escapeAttr(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// validateDocumentXMLStructure rejects nested paragraphs and run properties
// that follow run text; Word refuses to open either.
func validateDocumentXMLStructure(xmlText string) error {
	decoder := xml.NewDecoder(strings.NewReader(xmlText))
	var stack []xml.Name
	type runState struct {
		seenText bool
	}
	var runs []runState

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("document.xml parse failed: %w\n%s", err, firstLines(xmlText, 5))
		}
		switch t := token.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name)
			if isWmlElement(t.Name, "p") {
				for i := len(stack) - 2; i >= 0; i-- {
					if isWmlElement(stack[i], "p") {
						return fmt.Errorf("document.xml has nested <w:p>\n%s", firstLines(xmlText, 5))
					}
				}
			}
			if isWmlElement(t.Name, "r") {
				runs = append(runs, runState{})
			}
			if isWmlElement(t.Name, "t") && len(runs) > 0 {
				runs[len(runs)-1].seenText = true
			}
			if isWmlElement(t.Name, "rPr") && len(runs) > 0 && runs[len(runs)-1].seenText {
				return fmt.Errorf("document.xml has <w:rPr> after <w:t> in a run\n%s", firstLines(xmlText, 5))
			}
		case xml.EndElement:
			if isWmlElement(t.Name, "r") && len(runs) > 0 {
				runs = runs[:len(runs)-1]
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return nil
}

func isWmlElement(name xml.Name, local string) bool {
	return name.Local == local && name.Space == wmlNamespace
}

func firstLines(text string, count int) string {
	if count <= 0 {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) > count {
		lines = lines[:count]
	}
	return strings.Join(lines, "\n")
}
