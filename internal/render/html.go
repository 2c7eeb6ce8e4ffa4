package render

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"strconv"

	"hn-board/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	// primaryURL is where the card title points: the story's own link, or
	// its discussion page for text posts.
	"primaryURL": func(s model.StoryView) string {
		if s.ExternalURL != "" {
			return s.ExternalURL
		}
		return s.DiscussionURL
	},
}

var (
	cardsTpl = template.Must(template.New("cards.html.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/cards.html.tmpl"))
	pageTpl  = template.Must(template.New("page.html.tmpl").ParseFS(templateFS, "templates/page.html.tmpl"))
)

// HTMLPresenter renders stories as HTML cards into a Board.
type HTMLPresenter struct {
	Board *Board
}

func (p *HTMLPresenter) Render(stories []model.StoryView, storiesTarget, countTarget string) error {
	var buf bytes.Buffer
	if err := cardsTpl.Execute(&buf, stories); err != nil {
		return err
	}
	p.Board.Mount(
		countTarget, strconv.Itoa(len(stories)),
		storiesTarget, buf.String(),
	)
	return nil
}

type pageSection struct {
	Title        string
	StoriesClass string
	CountClass   string
	Count        string
	Stories      template.HTML
	Available    bool
}

// WriteHTML writes a full page with one column per section. The board must
// have been filled by an HTMLPresenter. A section whose regions were never
// mounted is shown as unavailable.
func WriteHTML(w io.Writer, title string, board *Board, sections []Section) error {
	data := struct {
		Title    string
		Sections []pageSection
	}{Title: title}
	for _, s := range sections {
		ps := pageSection{
			Title:        s.Title,
			StoriesClass: className(s.StoriesTarget),
			CountClass:   className(s.CountTarget),
		}
		stories, okStories := board.Region(s.StoriesTarget)
		count, okCount := board.Region(s.CountTarget)
		if okStories && okCount {
			ps.Available = true
			ps.Count = count
			// rendered by cardsTpl, which escapes every story field
			ps.Stories = template.HTML(stories)
		}
		data.Sections = append(data.Sections, ps)
	}
	return pageTpl.Execute(w, data)
}
