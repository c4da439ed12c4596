package grid

// Memory is an in-memory Grid. It backs tests and dry runs.
type Memory struct {
	rows   [][]Value // rows[r-1][c-1]
	styles map[[2]int]Style
	maxCol int
}

// NewMemory returns an empty grid.
func NewMemory() *Memory {
	return &Memory{styles: make(map[[2]int]Style)}
}

// FromRows builds a grid from raw rows (row 1 first). Entries may be nil,
// int, int64, float64, string or Value.
func FromRows(rows [][]any) *Memory {
	m := NewMemory()
	for r, row := range rows {
		for c, raw := range row {
			v := toValue(raw)
			if v.IsEmpty() {
				continue
			}
			_ = m.SetCell(r+1, c+1, v, Unstyled)
		}
	}
	return m
}

func toValue(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Value{}
	case Value:
		return x
	case int:
		return IntValue(int64(x))
	case int64:
		return IntValue(x)
	case float64:
		return FloatValue(x)
	case string:
		return TextValue(x)
	}
	return Value{}
}

func (m *Memory) Cell(row, col int) (Value, error) {
	if err := checkIndex(row, col); err != nil {
		return Value{}, err
	}
	if row > len(m.rows) || col > len(m.rows[row-1]) {
		return Value{}, nil
	}
	return m.rows[row-1][col-1], nil
}

func (m *Memory) SetCell(row, col int, v Value, style Style) error {
	if err := checkIndex(row, col); err != nil {
		return err
	}
	for len(m.rows) < row {
		m.rows = append(m.rows, nil)
	}
	r := m.rows[row-1]
	for len(r) < col {
		r = append(r, Value{})
	}
	r[col-1] = v
	m.rows[row-1] = r
	if col > m.maxCol {
		m.maxCol = col
	}
	if style != Unstyled {
		m.styles[[2]int{row, col}] = style
	}
	return nil
}

func (m *Memory) InsertColumn(col int) error {
	if err := checkIndex(1, col); err != nil {
		return err
	}
	for i, r := range m.rows {
		if col > len(r) {
			continue
		}
		r = append(r, Value{})
		copy(r[col:], r[col-1:])
		r[col-1] = Value{}
		m.rows[i] = r
	}
	shifted := make(map[[2]int]Style, len(m.styles))
	for k, s := range m.styles {
		if k[1] >= col {
			k[1]++
		}
		shifted[k] = s
	}
	m.styles = shifted
	if col <= m.maxCol {
		m.maxCol++
	}
	return nil
}

func (m *Memory) MaxRow() int    { return len(m.rows) }
func (m *Memory) MaxColumn() int { return m.maxCol }

// StyleAt returns the last style written to row, col.
func (m *Memory) StyleAt(row, col int) Style {
	return m.styles[[2]int{row, col}]
}

// Row returns a copy of row r padded to MaxColumn.
func (m *Memory) Row(r int) []Value {
	out := make([]Value, m.maxCol)
	if r >= 1 && r <= len(m.rows) {
		copy(out, m.rows[r-1])
	}
	return out
}
