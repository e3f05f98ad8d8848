package main

import "sync"

type ZobristTable struct {
	width  int
	height int
	cells  []uint64
	side   uint64
}

type zobristDims struct {
	width  int
	height int
}

type zobristStore struct {
	mu     sync.Mutex
	tables map[zobristDims]*ZobristTable
}

var zobristTables = &zobristStore{tables: make(map[zobristDims]*ZobristTable)}

func GetZobrist(width, height int) *ZobristTable {
	zobristTables.mu.Lock()
	defer zobristTables.mu.Unlock()
	dims := zobristDims{width: width, height: height}
	if table, ok := zobristTables.tables[dims]; ok {
		return table
	}
	rng := splitmix64{state: uint64(0x9e3779b97f4a7c15) ^ uint64(width)<<32 ^ uint64(height)}
	table := &ZobristTable{width: width, height: height, cells: make([]uint64, width*height*2)}
	for i := range table.cells {
		table.cells[i] = rng.next()
	}
	table.side = rng.next()
	zobristTables.tables[dims] = table
	return table
}

func (z *ZobristTable) mark(x, y int, cell Cell) uint64 {
	idx := (y*z.width + x) * 2
	if cell == CellO {
		idx++
	}
	return z.cells[idx]
}

// Hash is stable across processes for a given board: tables are seeded
// from the dimensions only.
func (b Board) Hash() uint64 {
	z := GetZobrist(b.width, b.height)
	var hash uint64
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			cell := b.cells[b.index(x, y)]
			if cell == CellEmpty {
				continue
			}
			hash ^= z.mark(x, y, cell)
		}
	}
	if b.turn == CellO {
		hash ^= z.side
	}
	return hash
}

type splitmix64 struct {
	state uint64
}

func (s *splitmix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
