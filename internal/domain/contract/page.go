package contract

// PaperSize represents the paper size for printing
type PaperSize string

const (
	PaperSizeA4 PaperSize = "A4" // 210mm x 297mm
)

// IsValid checks if the PaperSize is supported
func (p PaperSize) IsValid() bool {
	return p == PaperSizeA4
}

// Dimensions returns width and height in millimeters
func (p PaperSize) Dimensions() (width, height int) {
	switch p {
	case PaperSizeA4:
		return 210, 297
	default:
		return 0, 0
	}
}

// Margins represents the page margins in millimeters
type Margins struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// PageOptions are the layout parameters handed to the PDF renderer
type PageOptions struct {
	PaperSize PaperSize
	Margins   Margins
	Landscape bool
}

// ABNTMargins returns the Brazilian legal-document margins (NBR 14724):
// 30mm top and left, 20mm right and bottom.
func ABNTMargins() Margins {
	return Margins{Top: 30, Right: 20, Bottom: 20, Left: 30}
}

// ContractPageOptions is the canonical page layout of every contract PDF
func ContractPageOptions() PageOptions {
	return PageOptions{
		PaperSize: PaperSizeA4,
		Margins:   ABNTMargins(),
	}
}
