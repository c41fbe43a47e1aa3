package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoardPlaceAndAt(t *testing.T) {
	var b Board
	assert.Equal(t, Empty, b.At(7, 7))

	b.Place(7, 7, White)
	assert.Equal(t, White, b.At(7, 7))

	b.Place(0, 0, Black)
	assert.Equal(t, Black, b.At(0, 0))
}

func TestBoardInBounds(t *testing.T) {
	var b Board
	assert.True(t, b.InBounds(0, 0))
	assert.True(t, b.InBounds(14, 14))
	assert.False(t, b.InBounds(-1, 0))
	assert.False(t, b.InBounds(0, -1))
	assert.False(t, b.InBounds(15, 0))
	assert.False(t, b.InBounds(0, 15))
}

func placeRun(b *Board, row, col, dr, dc, n int, c Cell) {
	for i := 0; i < n; i++ {
		b.Place(row+i*dr, col+i*dc, c)
	}
}

func TestWinningMoveHorizontal(t *testing.T) {
	var b Board
	placeRun(&b, 7, 3, 0, 1, 5, White) // (7,3)..(7,7)
	assert.True(t, b.WinningMove(7, 5), "middle of the run")
	assert.True(t, b.WinningMove(7, 3), "left end of the run")
	assert.True(t, b.WinningMove(7, 7), "right end of the run")
}

func TestWinningMoveVertical(t *testing.T) {
	var b Board
	placeRun(&b, 2, 9, 1, 0, 5, Black)
	assert.True(t, b.WinningMove(4, 9))
}

func TestWinningMoveDiagonals(t *testing.T) {
	var b Board
	placeRun(&b, 3, 3, 1, 1, 5, White)
	assert.True(t, b.WinningMove(5, 5))

	var b2 Board
	placeRun(&b2, 10, 2, -1, 1, 5, Black) // rising diagonal
	assert.True(t, b2.WinningMove(8, 4))
}

func TestFourIsNotAWin(t *testing.T) {
	var b Board
	placeRun(&b, 7, 3, 0, 1, 4, White)
	for col := 3; col < 7; col++ {
		assert.False(t, b.WinningMove(7, col))
	}
}

func TestBrokenRunIsNotAWin(t *testing.T) {
	var b Board
	// xx_xx around a gap at (7,5)
	placeRun(&b, 7, 3, 0, 1, 2, White)
	placeRun(&b, 7, 6, 0, 1, 2, White)
	assert.False(t, b.WinningMove(7, 4))
	assert.False(t, b.WinningMove(7, 6))

	// filling the gap completes five
	b.Place(7, 5, White)
	assert.True(t, b.WinningMove(7, 5))
}

func TestOpponentStonesDoNotChain(t *testing.T) {
	var b Board
	placeRun(&b, 7, 3, 0, 1, 3, White)
	b.Place(7, 6, Black)
	placeRun(&b, 7, 7, 0, 1, 2, White)
	assert.False(t, b.WinningMove(7, 5))
}

func TestOverlineIsAWin(t *testing.T) {
	var b Board
	// six in a row, last stone at the right end
	placeRun(&b, 7, 4, 0, 1, 6, White)
	assert.True(t, b.WinningMove(7, 9))
	assert.True(t, b.WinningMove(7, 6), "interior stone of an overline")
}

func TestEmptyCellNeverWins(t *testing.T) {
	var b Board
	assert.False(t, b.WinningMove(7, 7))
}
