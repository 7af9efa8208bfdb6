package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/halvik/cryo/internal/mmfile"
	"github.com/halvik/cryo/internal/scan"
	"github.com/halvik/cryo/pkg/cryo"
	"github.com/halvik/cryo/pkg/types"
)

// row is one visible line of the tree pane.
type row struct {
	node     *scan.Node
	depth    int
	expanded bool
}

// Model is the main application model: the scanned dump, the flattened
// visible tree, and the cursor.
type Model struct {
	path        string
	res         *scan.Result
	compression types.Compression

	expanded map[*scan.Node]bool
	rows     []row
	cursor   int
	offset   int // first visible row

	width  int
	height int
}

// NewModel scans the dump at path and builds the initial view.
func NewModel(path string) (*Model, error) {
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	raw, compression, err := cryo.Decode(data)
	if err != nil {
		return nil, err
	}
	res, err := scan.Scan(raw)
	if err != nil {
		return nil, err
	}
	m := &Model{
		path:        path,
		res:         res,
		compression: compression,
		expanded:    map[*scan.Node]bool{res.Root: true},
	}
	m.flatten()
	return m, nil
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) flatten() {
	m.rows = m.rows[:0]
	var walk func(n *scan.Node, depth int)
	walk = func(n *scan.Node, depth int) {
		m.rows = append(m.rows, row{node: n, depth: depth, expanded: m.expanded[n]})
		if m.expanded[n] {
			for _, k := range n.Kids {
				walk(k, depth+1)
			}
		}
	}
	walk(m.res.Root, 0)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case "g":
			m.cursor = 0
		case "G":
			m.cursor = len(m.rows) - 1
		case "enter", " ":
			n := m.rows[m.cursor].node
			if len(n.Kids) > 0 {
				m.expanded[n] = !m.expanded[n]
				m.flatten()
			}
		}
	}
	m.clampScroll()
	return m, nil
}

func (m *Model) clampScroll() {
	visible := m.treeHeight()
	if visible < 1 {
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

func (m *Model) treeHeight() int {
	return m.height - 4 // header, status bar, pane borders
}

func (m *Model) View() string {
	if m.width == 0 {
		return "loading…"
	}
	header := headerStyle.Render(fmt.Sprintf("cryoexplorer — %s (%s, %d ids)",
		m.path, m.compression, m.res.MaxID))

	treeWidth := m.width * 3 / 5
	detailWidth := m.width - treeWidth - 4

	tree := m.renderTree(treeWidth)
	detail := m.renderDetail()
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Width(treeWidth).Render(tree),
		paneStyle.Width(detailWidth).Render(detail))

	status := statusStyle.Render(fmt.Sprintf(" %d/%d  q quit  enter expand", m.cursor+1, len(m.rows)))
	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

func (m *Model) renderTree(width int) string {
	var b strings.Builder
	visible := m.treeHeight()
	end := m.offset + visible
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		marker := "  "
		if len(r.node.Kids) > 0 {
			if r.expanded {
				marker = "▾ "
			} else {
				marker = "▸ "
			}
		}
		line := strings.Repeat("  ", r.depth) + marker + r.node.Label
		if r.node.ID != 0 {
			line += fmt.Sprintf(" #%d", r.node.ID)
		}
		if len(line) > width && width > 1 {
			line = line[:width-1] + "…"
		}
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func (m *Model) renderDetail() string {
	n := m.rows[m.cursor].node
	lines := []string{
		detailTitleStyle.Render("Value"),
		fmt.Sprintf("kind:     %s", n.KindName()),
		fmt.Sprintf("label:    %s", n.Label),
		fmt.Sprintf("offset:   %d", n.Off),
		fmt.Sprintf("length:   %d bytes", n.Len),
		fmt.Sprintf("children: %d", len(n.Kids)),
	}
	if n.ID != 0 {
		lines = append(lines, fmt.Sprintf("ref id:   %d", n.ID))
	}
	if n.Ref != 0 {
		lines = append(lines, fmt.Sprintf("refers:   #%d", n.Ref))
	}
	return strings.Join(lines, "\n")
}
