package cli

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/bookplot/pkg/core/dirichlet"
	"github.com/matzehuels/bookplot/pkg/core/opening"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// sortKey orders the rows of the opening browser.
type sortKey int

const (
	sortGames sortKey = iota
	sortWhite
	sortDraw
	sortBlack
	sortElo
	sortSurprise
	sortFEN
	numSortKeys
)

func (k sortKey) String() string {
	return [...]string{"games", "white %", "draw %", "black %", "elo", "surprise", "fen"}[k]
}

// openingRow is an opening with the values the browser displays.
type openingRow struct {
	opening.Opening
	// surprise is the negative log density of the opening's outcome shares
	// under the fitted prior; high values mark unusual openings.
	surprise float64
}

func (r openingRow) key(k sortKey) float64 {
	switch k {
	case sortWhite:
		return r.WhiteWinProportion()
	case sortDraw:
		return r.DrawProportion()
	case sortBlack:
		return r.BlackWinProportion()
	case sortElo:
		return r.EloDifference()
	case sortSurprise:
		return r.surprise
	default:
		return float64(r.Total())
	}
}

// =============================================================================
// BookModel - Interactive opening browser
// =============================================================================

// BookModel is the bubbletea model for browsing the openings of a book.
type BookModel struct {
	Title    string
	Alpha    dirichlet.Alpha
	HasAlpha bool

	rows    []openingRow
	sortBy  sortKey
	reverse bool
	Cursor  int
	Offset  int
	Height  int
}

// NewBookModel creates a browser over the analysis' openings, sorted by game count.
func NewBookModel(title string, a opening.Analysis, hasAlpha bool) BookModel {
	rows := make([]openingRow, len(a.Openings))
	for i, o := range a.Openings {
		rows[i] = openingRow{Opening: o, surprise: math.NaN()}
		if hasAlpha {
			p := o.Point()
			if l, err := dirichlet.LogDensity(a.Alpha, p.P1, p.P2); err == nil {
				rows[i].surprise = -l
			}
		}
	}
	m := BookModel{Title: title, Alpha: a.Alpha, HasAlpha: hasAlpha, rows: rows, Height: 15}
	m.sort()
	return m
}

func (m *BookModel) sort() {
	slices.SortStableFunc(m.rows, func(a, b openingRow) int {
		var c int
		if m.sortBy == sortFEN {
			c = strings.Compare(a.FEN, b.FEN)
		} else {
			// Descending by default: the biggest values are the interesting ones.
			c = cmp.Compare(b.key(m.sortBy), a.key(m.sortBy))
		}
		if m.reverse {
			c = -c
		}
		return c
	})
}

// Selected returns the opening under the cursor.
func (m BookModel) Selected() (opening.Opening, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.rows) {
		return opening.Opening{}, false
	}
	return m.rows[m.Cursor].Opening, true
}

func (m BookModel) Init() tea.Cmd {
	return nil
}

func (m BookModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup", "b":
			m.move(-m.Height)
		case "pgdown", "f", " ":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.rows))
		case "end", "G":
			m.move(len(m.rows))
		case "s":
			m.sortBy = (m.sortBy + 1) % numSortKeys
			if m.sortBy == sortSurprise && !m.HasAlpha {
				m.sortBy++
			}
			m.sort()
		case "r":
			m.reverse = !m.reverse
			m.sort()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta rows, clamped, keeping it on screen.
func (m *BookModel) move(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.rows)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m BookModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	if m.HasAlpha {
		b.WriteString(listDimStyle.Render("alpha ") + StyleNumber.Render(m.Alpha.String()) +
			listDimStyle.Render("  mean W/D/B ") + StyleNumber.Render(formatMean(m.Alpha)))
		b.WriteString("\n")
	}
	order := "desc"
	if m.reverse {
		order = "asc"
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("↑/↓ navigate  s sort (%s, %s)  r reverse  q quit", m.sortBy, order)))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.rows))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		surprise := "—"
		if !math.IsNaN(r.surprise) {
			surprise = fmt.Sprintf("%.2f", r.surprise)
		}
		rows = append(rows, []string{
			cursor,
			opening.ShortFEN(r.FEN),
			fmt.Sprint(r.Total()),
			percent(r.WhiteWinProportion()),
			percent(r.DrawProportion()),
			percent(r.BlackWinProportion()),
			fmt.Sprintf("%+.0f", r.EloDifference()),
			surprise,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Opening", "Games", "White", "Draw", "Black", "Elo", "Surprise").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col == 0 || col == 7 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	if o, ok := m.Selected(); ok {
		b.WriteString(listDimStyle.Render("  " + o.FEN))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.rows)), len(m.rows))))

	return b.String()
}

func percent(p float64) string {
	return fmt.Sprintf("%5.1f%%", 100*p)
}
