// Package render turns ranked product matches into display cards. Matches
// are shown in the order the detection service returned them.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"text/tabwriter"

	"golang.org/x/text/language"

	"github.com/snaplens/gateway/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var resultsTemplate = template.Must(template.ParseFS(templateFS, "templates/results.html"))

// Options are the presentation settings chosen at the composition root
type Options struct {
	Currency   string
	Locale     language.Tag
	MatchLabel string
	LinkLabel  string
}

// DefaultOptions returns English labels and yen prices
func DefaultOptions() Options {
	return Options{
		Currency:   DefaultCurrency,
		Locale:     language.English,
		MatchLabel: "match",
		LinkLabel:  "View on shop",
	}
}

// Card is one product match prepared for display
type Card struct {
	Title        string
	Price        string
	Score        string
	HasScore     bool
	ThumbnailURL string
	ShopName     string
	Link         string // empty when the source URL is not an absolute http(s) URL
}

// Renderer builds cards and writes them as HTML or text
type Renderer struct {
	opts  Options
	price *PriceFormatter
}

// New creates a renderer with the given options
func New(opts Options) *Renderer {
	return &Renderer{
		opts:  opts,
		price: NewPriceFormatter(opts.Currency, opts.Locale),
	}
}

// Cards converts matches into cards, preserving order
func (r *Renderer) Cards(matches []domain.ProductMatch) []Card {
	cards := make([]Card, 0, len(matches))
	for _, m := range matches {
		score, hasScore := FormatScore(m.Score)
		cards = append(cards, Card{
			Title:        m.Title,
			Price:        r.price.Format(m.Price),
			Score:        score,
			HasScore:     hasScore,
			ThumbnailURL: safeURL(m.ThumbnailURL),
			ShopName:     m.ShopName,
			Link:         safeURL(m.Link()),
		})
	}
	return cards
}

// WriteHTML renders the result grid. Links open in a new browsing context
// with no opener access; titles are clamped to two lines by CSS only.
func (r *Renderer) WriteHTML(w io.Writer, matches []domain.ProductMatch) error {
	data := struct {
		Cards      []Card
		MatchLabel string
		LinkLabel  string
	}{
		Cards:      r.Cards(matches),
		MatchLabel: r.opts.MatchLabel,
		LinkLabel:  r.opts.LinkLabel,
	}
	if err := resultsTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render results: %w", err)
	}
	return nil
}

// WriteText renders one line per match for terminals
func (r *Renderer) WriteText(w io.Writer, matches []domain.ProductMatch) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, card := range r.Cards(matches) {
		score := "-"
		if card.HasScore {
			score = card.Score
		}
		fmt.Fprintf(tw, "%d.\t%s\t%s\t%s\t%s\t%s\n", i+1, score, card.Price, card.Title, card.ShopName, card.Link)
	}
	return tw.Flush()
}

// safeURL keeps only absolute http(s) URLs
func safeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return u.String()
}
