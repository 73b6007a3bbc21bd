package worldmap

import (
	"math/rand"

	"plemiona/modules/kit/errx"
)

var ErrMapFull = errx.NewBiz("MAP_FULL", "not enough free tiles for all players")

type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Allocator hands out unique tiles from a finite pool, once per session
// start.
type Allocator interface {
	Assign(count int) ([]Coord, error)
}

// GridAllocator shuffles an n×n grid and takes the first count tiles.
type GridAllocator struct {
	size int
}

func NewGridAllocator(size int) *GridAllocator {
	if size <= 0 {
		size = 10
	}
	return &GridAllocator{size: size}
}

func (g *GridAllocator) Assign(count int) ([]Coord, error) {
	pool := make([]Coord, 0, g.size*g.size)
	for x := 0; x < g.size; x++ {
		for y := 0; y < g.size; y++ {
			pool = append(pool, Coord{X: x, Y: y})
		}
	}
	if count > len(pool) {
		return nil, ErrMapFull
	}
	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool[:count], nil
}
