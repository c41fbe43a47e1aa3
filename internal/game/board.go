package game

// Board dimensions and cell states for standard Gobang.
const (
	BoardRows = 15
	BoardCols = 15
)

type Cell uint8

const (
	Empty Cell = iota
	White
	Black
)

// Board is the authoritative 15x15 grid. The zero value is an empty board.
// It carries no lock of its own; the owning room serialises access.
type Board struct {
	cells [BoardRows][BoardCols]Cell
}

func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < BoardRows && col >= 0 && col < BoardCols
}

func (b *Board) At(row, col int) Cell {
	return b.cells[row][col]
}

func (b *Board) Place(row, col int, c Cell) {
	b.cells[row][col] = c
}

// winDirections are the four scan axes: vertical, horizontal, and the two
// diagonals. Each axis is walked both ways from the placed stone.
var winDirections = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {-1, 1}}

// WinningMove reports whether the stone at (row, col) completes a run of
// five or more same-colour stones on any axis. Runs longer than five
// (overlines) count as wins.
func (b *Board) WinningMove(row, col int) bool {
	colour := b.cells[row][col]
	if colour == Empty {
		return false
	}
	for _, d := range winDirections {
		count := 1
		for r, c := row+d[0], col+d[1]; b.InBounds(r, c) && b.cells[r][c] == colour; r, c = r+d[0], c+d[1] {
			count++
		}
		for r, c := row-d[0], col-d[1]; b.InBounds(r, c) && b.cells[r][c] == colour; r, c = r-d[0], c-d[1] {
			count++
		}
		if count >= 5 {
			return true
		}
	}
	return false
}
