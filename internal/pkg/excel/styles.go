package excel

import "github.com/xuri/excelize/v2"

// Built-in number formats.
const (
	NumFmtInteger = 1 // 0
	NumFmtMoney   = 4 // #,##0.00
)

const (
	colorHeader     = "1F4E78"
	colorTitle      = "203864"
	colorTotal      = "D9E1F2"
	colorGrandTotal = "FFE699"
	colorCard       = "DDEBF7"
	colorGoodFill   = "C6EFCE"
	colorGoodFont   = "006100"
	colorBadFill    = "FFC7CE"
	colorBadFont    = "9C0006"
)

// StyleManager caches styles so each one is created only once per file.
type StyleManager struct {
	file  *excelize.File
	font  string
	cache map[string]int
}

// NewStyleManager creates a style manager bound to the given file.
func NewStyleManager(f *excelize.File, fontFamily string) *StyleManager {
	if fontFamily == "" {
		fontFamily = "Arial"
	}
	return &StyleManager{file: f, font: fontFamily, cache: make(map[string]int)}
}

func (sm *StyleManager) Title() (int, error) {
	return sm.getOrCreate("title", &excelize.Style{
		Font:      &excelize.Font{Family: sm.font, Size: 16, Bold: true, Color: "FFFFFF"},
		Fill:      solid(colorTitle),
		Alignment: rtlAlign("center"),
	})
}

func (sm *StyleManager) Header() (int, error) {
	return sm.getOrCreate("header", &excelize.Style{
		Font:      &excelize.Font{Family: sm.font, Size: 11, Bold: true, Color: "FFFFFF"},
		Fill:      solid(colorHeader),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true, ReadingOrder: 2},
		Border:    defaultBorder(),
	})
}

func (sm *StyleManager) Text() (int, error) {
	return sm.getOrCreate("text", &excelize.Style{
		Font:      sm.baseFont(false),
		Alignment: rtlAlign("right"),
		Border:    defaultBorder(),
	})
}

func (sm *StyleManager) Integer() (int, error) {
	return sm.getOrCreate("integer", &excelize.Style{
		Font:      sm.baseFont(false),
		Alignment: rtlAlign("center"),
		Border:    defaultBorder(),
		NumFmt:    NumFmtInteger,
	})
}

func (sm *StyleManager) Money() (int, error) {
	return sm.getOrCreate("money", &excelize.Style{
		Font:      sm.baseFont(false),
		Alignment: &excelize.Alignment{Horizontal: "right", Vertical: "center"},
		Border:    defaultBorder(),
		NumFmt:    NumFmtMoney,
	})
}

func (sm *StyleManager) TotalLabel() (int, error) {
	return sm.getOrCreate("total_label", &excelize.Style{
		Font:      sm.baseFont(true),
		Fill:      solid(colorTotal),
		Alignment: rtlAlign("right"),
		Border:    defaultBorder(),
	})
}

func (sm *StyleManager) TotalMoney() (int, error) {
	return sm.getOrCreate("total_money", &excelize.Style{
		Font:      sm.baseFont(true),
		Fill:      solid(colorTotal),
		Alignment: &excelize.Alignment{Horizontal: "right", Vertical: "center"},
		Border:    defaultBorder(),
		NumFmt:    NumFmtMoney,
	})
}

func (sm *StyleManager) TotalInteger() (int, error) {
	return sm.getOrCreate("total_integer", &excelize.Style{
		Font:      sm.baseFont(true),
		Fill:      solid(colorTotal),
		Alignment: rtlAlign("center"),
		Border:    defaultBorder(),
		NumFmt:    NumFmtInteger,
	})
}

func (sm *StyleManager) GrandTotalLabel() (int, error) {
	return sm.getOrCreate("grand_label", &excelize.Style{
		Font:      sm.baseFont(true),
		Fill:      solid(colorGrandTotal),
		Alignment: rtlAlign("right"),
		Border:    defaultBorder(),
	})
}

func (sm *StyleManager) GrandTotalMoney() (int, error) {
	return sm.getOrCreate("grand_money", &excelize.Style{
		Font:      sm.baseFont(true),
		Fill:      solid(colorGrandTotal),
		Alignment: &excelize.Alignment{Horizontal: "right", Vertical: "center"},
		Border:    defaultBorder(),
		NumFmt:    NumFmtMoney,
	})
}

func (sm *StyleManager) GrandTotalInteger() (int, error) {
	return sm.getOrCreate("grand_integer", &excelize.Style{
		Font:      sm.baseFont(true),
		Fill:      solid(colorGrandTotal),
		Alignment: rtlAlign("center"),
		Border:    defaultBorder(),
		NumFmt:    NumFmtInteger,
	})
}

func (sm *StyleManager) CardLabel() (int, error) {
	return sm.getOrCreate("card_label", &excelize.Style{
		Font:      &excelize.Font{Family: sm.font, Size: 10, Color: "595959"},
		Fill:      solid(colorCard),
		Alignment: rtlAlign("center"),
		Border:    defaultBorder(),
	})
}

func (sm *StyleManager) CardValue() (int, error) {
	return sm.getOrCreate("card_value", &excelize.Style{
		Font:      &excelize.Font{Family: sm.font, Size: 18, Bold: true, Color: colorTitle},
		Fill:      solid(colorCard),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    defaultBorder(),
		NumFmt:    NumFmtMoney,
	})
}

func (sm *StyleManager) CardCount() (int, error) {
	return sm.getOrCreate("card_count", &excelize.Style{
		Font:      &excelize.Font{Family: sm.font, Size: 18, Bold: true, Color: colorTitle},
		Fill:      solid(colorCard),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    defaultBorder(),
		NumFmt:    NumFmtInteger,
	})
}

// AboveAverageGood is the conditional format used on earnings columns.
func (sm *StyleManager) AboveAverageGood() (int, error) {
	return sm.getOrCreateConditional("cond_good", &excelize.Style{
		Font: &excelize.Font{Color: colorGoodFont},
		Fill: solid(colorGoodFill),
	})
}

// AboveAverageBad is the conditional format used on deduction columns.
func (sm *StyleManager) AboveAverageBad() (int, error) {
	return sm.getOrCreateConditional("cond_bad", &excelize.Style{
		Font: &excelize.Font{Color: colorBadFont},
		Fill: solid(colorBadFill),
	})
}

func (sm *StyleManager) baseFont(bold bool) *excelize.Font {
	return &excelize.Font{Family: sm.font, Size: 11, Bold: bold}
}

func (sm *StyleManager) getOrCreate(key string, style *excelize.Style) (int, error) {
	if id, ok := sm.cache[key]; ok {
		return id, nil
	}

	id, err := sm.file.NewStyle(style)
	if err != nil {
		return 0, err
	}

	sm.cache[key] = id
	return id, nil
}

func (sm *StyleManager) getOrCreateConditional(key string, style *excelize.Style) (int, error) {
	if id, ok := sm.cache[key]; ok {
		return id, nil
	}

	id, err := sm.file.NewConditionalStyle(style)
	if err != nil {
		return 0, err
	}

	sm.cache[key] = id
	return id, nil
}

func solid(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
}

func rtlAlign(horizontal string) *excelize.Alignment {
	return &excelize.Alignment{Horizontal: horizontal, Vertical: "center", ReadingOrder: 2}
}

func defaultBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "A6A6A6", Style: 1},
		{Type: "right", Color: "A6A6A6", Style: 1},
		{Type: "top", Color: "A6A6A6", Style: 1},
		{Type: "bottom", Color: "A6A6A6", Style: 1},
	}
}
