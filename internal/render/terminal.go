package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"hn-board/internal/model"
)

var (
	accentColor = lipgloss.Color("#FF6600")
	mutedColor  = lipgloss.Color("#94A3B8")

	badgeStyle   = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(accentColor).MarginTop(1)
	cardBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)
)

// DefaultWidth is the card width used when TerminalPresenter.Width is unset.
const DefaultWidth = 80

// TerminalPresenter renders stories as bordered text cards into a Board.
type TerminalPresenter struct {
	Board *Board
	Width int
}

func (p *TerminalPresenter) Render(stories []model.StoryView, storiesTarget, countTarget string) error {
	width := p.Width
	if width <= 0 {
		width = DefaultWidth
	}
	cards := make([]string, len(stories))
	for i, s := range stories {
		cards[i] = renderCard(i, s, width)
	}
	p.Board.Mount(
		countTarget, strconv.Itoa(len(stories)),
		storiesTarget, lipgloss.JoinVertical(lipgloss.Left, cards...),
	)
	return nil
}

func renderCard(i int, s model.StoryView, width int) string {
	rows := []string{
		badgeStyle.Render(fmt.Sprintf("%d.", i+1)) + " " + titleStyle.Render(s.Title),
		mutedStyle.Render(s.CreatedAt),
	}
	if s.ExternalURL != "" {
		rows = append(rows, "Link: "+s.ExternalURL)
	}
	rows = append(rows, "Discussion: "+s.DiscussionURL)
	// width includes the border and padding
	return cardBoxStyle.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// WriteText writes every section of a board filled by a TerminalPresenter.
func WriteText(w io.Writer, board *Board, sections []Section) error {
	var b strings.Builder
	for _, s := range sections {
		stories, okStories := board.Region(s.StoriesTarget)
		count, okCount := board.Region(s.CountTarget)
		if !okStories || !okCount {
			b.WriteString(headerStyle.Render(s.Title+" (-)") + "\n")
			b.WriteString(mutedStyle.Render("Stories are unavailable right now.") + "\n")
			continue
		}
		b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%s)", s.Title, count)) + "\n")
		if stories != "" {
			b.WriteString(stories + "\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
