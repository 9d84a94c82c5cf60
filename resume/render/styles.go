package render

// RunStyle captures inline run formatting.
type RunStyle struct {
	Bold      bool
	Italic    bool
	Underline bool
	Size      int // half-points
	Color     string
}

const (
	HeadingColor = "1F2937"
	NameColor    = "111111"
	LinkColor    = "0563C1"
	HeadingSize  = 22
	NameSize     = 28
)

// StyleMap centralizes the formatting for key résumé elements.
var StyleMap = map[string]RunStyle{
	"name": {
		Bold:  true,
		Size:  NameSize,
		Color: NameColor,
	},
	"sectionHeading": {
		Bold:  true,
		Size:  HeadingSize,
		Color: HeadingColor,
	},
	"roleLine": {
		Bold: true,
	},
	"degree": {
		Bold:   true,
		Italic: true,
	},
	"meta": {
		Italic: true,
	},
	"link": {
		Underline: true,
		Color:     LinkColor,
	},
}

// pageSetup is the font and margin profile of a generated document.
type pageSetup struct {
	Font     string
	FontSize int    // half-points
	Margins  [4]int // top, right, bottom, left in twips
	Spacing  int    // line spacing in 240ths
}

var (
	resumePage      = pageSetup{Font: "Times New Roman", FontSize: 20, Margins: [4]int{720, 1080, 720, 1080}, Spacing: 240}
	coverLetterPage = pageSetup{Font: "Times New Roman", FontSize: 22, Margins: [4]int{1440, 1440, 1440, 1440}, Spacing: 276}
	cheatsheetPage  = pageSetup{Font: "Calibri", FontSize: 22, Margins: [4]int{1440, 1440, 1440, 1440}, Spacing: 240}
)

// rightTabPos is the right-aligned tab stop used for dates and locations (7in).
const rightTabPos = 10080
