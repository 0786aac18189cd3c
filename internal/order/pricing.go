package order

// Pricing holds per-page unit prices in whole currency units.
type Pricing struct {
	BW    int64 `json:"bw"`
	Color int64 `json:"color"`
}

// DefaultPricing is 2 units per black & white page and 10 per color page.
var DefaultPricing = Pricing{BW: 2, Color: 10}

// DocumentSummary is the cost breakdown of one document.
type DocumentSummary struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name"`
	Pages          int    `json:"pages"`
	BWPages        int    `json:"bwPages"`
	ColorPages     int    `json:"colorPages"`
	PortraitPages  int    `json:"portraitPages"`
	LandscapePages int    `json:"landscapePages"`
	Cost           int64  `json:"cost"`
}

// Summary is the derived order total. It is never stored.
type Summary struct {
	TotalPages     int               `json:"totalPages"`
	BWPages        int               `json:"bwPages"`
	ColorPages     int               `json:"colorPages"`
	PortraitPages  int               `json:"portraitPages"`
	LandscapePages int               `json:"landscapePages"`
	TotalCost      int64             `json:"totalCost"`
	Documents      []DocumentSummary `json:"documents"`
}

// Cost returns the price of bw black & white pages and color color pages.
func (p Pricing) Cost(bw, color int) int64 {
	return int64(bw)*p.BW + int64(color)*p.Color
}

// DocumentCost computes the breakdown for one document from its settings.
// Anything not explicitly color is charged as black & white.
func (p Pricing) DocumentCost(d Document) DocumentSummary {
	s := DocumentSummary{ID: d.ID, Name: d.Name, Pages: len(d.PageSettings)}
	for _, ps := range d.PageSettings {
		if ps.ColorMode == ColorFull {
			s.ColorPages++
		} else {
			s.BWPages++
		}
		if ps.Orientation == Landscape {
			s.LandscapePages++
		} else {
			s.PortraitPages++
		}
	}
	s.Cost = p.Cost(s.BWPages, s.ColorPages)
	return s
}

// Summarize totals docs. It is a pure function of the page settings.
func (p Pricing) Summarize(docs []Document) Summary {
	sum := Summary{Documents: make([]DocumentSummary, 0, len(docs))}
	for _, d := range docs {
		ds := p.DocumentCost(d)
		sum.Documents = append(sum.Documents, ds)
		sum.TotalPages += ds.Pages
		sum.BWPages += ds.BWPages
		sum.ColorPages += ds.ColorPages
		sum.PortraitPages += ds.PortraitPages
		sum.LandscapePages += ds.LandscapePages
	}
	sum.TotalCost = p.Cost(sum.BWPages, sum.ColorPages)
	return sum
}
