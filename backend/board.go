package main

import (
	"errors"
	"fmt"
	"strings"
)

type Cell uint8

const (
	CellEmpty Cell = iota
	CellX
	CellO
)

const winRunLength = 3

var (
	ErrOutOfBounds = errors.New("out of bounds")
	ErrInvalidSize = errors.New("invalid board size")
)

// horizontal, vertical, down-right, down-left
var winDirections = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {-1, 1}}

// Board is one snapshot of a game: dimensions, marks and the side to move.
// Boards are compared by value through Key; use Clone before exploring a
// hypothetical move.
type Board struct {
	width  int
	height int
	cells  []Cell
	turn   Cell
}

// BoardKey is the comparable form of a Board. Two boards have the same key
// iff their dimensions, cells and turn are identical.
type BoardKey struct {
	Width  int
	Height int
	Cells  string
	Turn   Cell
}

func NewBoard(width, height int) Board {
	if width <= 0 || height <= 0 {
		panic(fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height))
	}
	return Board{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
		turn:   CellX,
	}
}

func (b Board) Width() int  { return b.width }
func (b Board) Height() int { return b.height }
func (b Board) Turn() Cell  { return b.turn }

func (b Board) At(x, y int) Cell {
	b.mustInBounds(x, y)
	return b.cells[b.index(x, y)]
}

func (b Board) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width && y < b.height
}

// Place writes the current turn's mark at (x, y) and flips the turn.
// Placing on an occupied cell does nothing.
func (b *Board) Place(x, y int) {
	b.mustInBounds(x, y)
	idx := b.index(x, y)
	if b.cells[idx] != CellEmpty {
		return
	}
	b.cells[idx] = b.turn
	b.turn = b.turn.Opponent()
}

func (b Board) IsCellEmpty(x, y int) bool {
	b.mustInBounds(x, y)
	return b.cells[b.index(x, y)] == CellEmpty
}

// CheckWinner returns the mark owning the first run of three found scanning
// rows top to bottom, cells left to right, directions horizontal, vertical,
// down-right, down-left. CellEmpty means nobody has won.
func (b Board) CheckWinner() Cell {
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			mark := b.cells[b.index(x, y)]
			if mark == CellEmpty {
				continue
			}
			for _, dir := range winDirections {
				if b.runFrom(x, y, dir[0], dir[1], mark) {
					return mark
				}
			}
		}
	}
	return CellEmpty
}

func (b Board) runFrom(x, y, dx, dy int, mark Cell) bool {
	for i := 1; i < winRunLength; i++ {
		nx, ny := x+dx*i, y+dy*i
		if !b.InBounds(nx, ny) || b.cells[b.index(nx, ny)] != mark {
			return false
		}
	}
	return true
}

func (b Board) IsFull() bool {
	for _, cell := range b.cells {
		if cell == CellEmpty {
			return false
		}
	}
	return true
}

func (b Board) IsTerminal() bool {
	return b.CheckWinner() != CellEmpty || b.IsFull()
}

func (b *Board) Reset() {
	b.turn = CellX
	for i := range b.cells {
		b.cells[i] = CellEmpty
	}
}

func (b Board) Clone() Board {
	clone := b
	clone.cells = make([]Cell, len(b.cells))
	copy(clone.cells, b.cells)
	return clone
}

func (b Board) Key() BoardKey {
	raw := make([]byte, len(b.cells))
	for i, cell := range b.cells {
		raw[i] = byte(cell)
	}
	return BoardKey{Width: b.width, Height: b.height, Cells: string(raw), Turn: b.turn}
}

func (b Board) Equal(other Board) bool {
	return b.Key() == other.Key()
}

func (b Board) EmptyCount() int {
	count := 0
	for _, cell := range b.cells {
		if cell == CellEmpty {
			count++
		}
	}
	return count
}

// String draws the grid the way the terminal front end does, without
// colors or cursor.
func (b Board) String() string {
	var sb strings.Builder
	for y := 0; y < b.height; y++ {
		sb.WriteString(" ")
		for x := 0; x < b.width; x++ {
			sb.WriteString(b.cells[b.index(x, y)].String())
			if x != b.width-1 {
				sb.WriteString(" | ")
			}
		}
		sb.WriteString("\n")
		if y != b.height-1 {
			sb.WriteString(rowSeparator(b.width))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func rowSeparator(width int) string {
	parts := make([]string, width)
	for i := range parts {
		parts[i] = "---"
	}
	return strings.Join(parts, "+")
}

func (b Board) index(x, y int) int {
	return y*b.width + x
}

func (b Board) mustInBounds(x, y int) {
	if !b.InBounds(x, y) {
		panic(fmt.Errorf("%w: (%d,%d) on %dx%d board", ErrOutOfBounds, x, y, b.width, b.height))
	}
}

func (c Cell) String() string {
	switch c {
	case CellX:
		return "X"
	case CellO:
		return "O"
	default:
		return " "
	}
}

func (c Cell) Opponent() Cell {
	switch c {
	case CellX:
		return CellO
	case CellO:
		return CellX
	default:
		return CellEmpty
	}
}

func cellToInt(cell Cell) int {
	switch cell {
	case CellX:
		return 1
	case CellO:
		return 2
	default:
		return 0
	}
}

func boardToSlice(board Board) [][]int {
	rows := make([][]int, board.Height())
	for y := range rows {
		rows[y] = make([]int, board.Width())
		for x := range rows[y] {
			rows[y][x] = cellToInt(board.At(x, y))
		}
	}
	return rows
}
