package cli

import (
	"fmt"
	"io"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	bookrec "github.com/kailas-cloud/bookrec/pkg/sdk"
)

const (
	msgEmptyQuery   = "Please enter the title of a book you enjoy reading."
	msgFirstFmt     = "The following are the first %d books from the dataset:"
	msgFullTitle    = "Please enter the full title of the book you are interested in."
	msgNoMatch      = "Sorry, no match found in this dataset! Here is a random recommendation for you:"
	msgExact        = "The matching book from the dataset:"
	msgRecommended  = "The recommendations for you are:"
	msgNoneFound    = "No books found."
	msgAmbiguous    = "The following are the matching books from the dataset:"
	msgTooManyFmt   = "There are many matches (%d) from the dataset and the first %d are:"
	msgPartialFmt   = "Only %d books from this dataset match the criteria and here they are:"
	msgTopicsHeader = "TOPIC\tBOOKS"
)

// textRenderer prints books the way the catalog presents them to readers.
type textRenderer struct {
	w     io.Writer
	title cases.Caser
}

func newTextRenderer(w io.Writer) *textRenderer {
	return &textRenderer{w: w, title: cases.Title(language.English)}
}

func (r *textRenderer) line(s string) {
	fmt.Fprintln(r.w, s)
}

func (r *textRenderer) book(b *bookrec.Book) {
	author := b.Author
	if author == "" {
		author = "unknown"
	}
	fmt.Fprintf(r.w, "Title: %s\n", r.title.String(b.Title))
	fmt.Fprintf(r.w, "Rating (scale 0-5): %s; and Author: %s\n", formatRating(b.Rating), author)
	fmt.Fprintf(r.w, "Summary: %s\n", b.Summary)
}

func (r *textRenderer) books(bs []bookrec.Book) {
	for i := range bs {
		r.line("")
		r.book(&bs[i])
	}
}

func (r *textRenderer) neighbors(ns []bookrec.Neighbor) {
	for i := range ns {
		r.line("")
		r.book(&ns[i].Book)
		fmt.Fprintf(r.w, "Similarity: %.3f\n", ns[i].Similarity)
	}
}

func (r *textRenderer) candidates(titles []string) {
	for _, t := range titles {
		r.line("  - " + r.title.String(t))
	}
}

// match prints a resolution that did not name a single title.
func (r *textRenderer) match(m *bookrec.Match) {
	switch m.Kind {
	case bookrec.MatchEmpty:
		r.line(fmt.Sprintf(msgFirstFmt, len(m.Candidates)))
		r.candidates(m.Candidates)
		r.line(msgEmptyQuery)
	case bookrec.MatchNone:
		r.line(fmt.Sprintf("No title in this dataset starts with %q.", m.Query))
	case bookrec.MatchExact:
		r.line(msgExact)
		r.candidates([]string{m.Title})
	case bookrec.MatchAmbiguous:
		r.line(msgAmbiguous)
		r.candidates(m.Candidates)
		r.line(msgFullTitle)
	case bookrec.MatchTooMany:
		r.line(fmt.Sprintf(msgTooManyFmt, m.Total, len(m.Candidates)))
		r.candidates(m.Candidates)
		r.line(msgFullTitle)
	}
}

func (r *textRenderer) recommendation(rec *bookrec.Recommendation, seed *bookrec.Book) {
	switch {
	case rec.RandomFallback:
		r.line(msgNoMatch)
		r.neighbors(rec.Neighbors)
	case rec.Recommended():
		r.line(msgExact)
		if seed != nil {
			r.line("")
			r.book(seed)
		}
		r.line("")
		r.line(msgRecommended)
		r.neighbors(rec.Neighbors)
	default:
		r.match(&rec.Match)
	}
}

func (r *textRenderer) exploration(ex *bookrec.Exploration) {
	switch {
	case len(ex.Books) == 0:
		r.line(msgNoneFound)
		return
	case ex.Mode == bookrec.ModeFullRandom:
		r.line(msgNoMatch)
	case ex.Mode == bookrec.ModePartialMatch:
		r.line(fmt.Sprintf(msgPartialFmt, ex.Matched))
	default:
		r.line(msgRecommended)
	}
	r.books(ex.Books)
}

func (r *textRenderer) topics(ts []bookrec.TopicCount) {
	r.line(msgTopicsHeader)
	for _, t := range ts {
		fmt.Fprintf(r.w, "%s\t%d\n", t.Topic, t.Count)
	}
}

func formatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
