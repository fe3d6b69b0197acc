package entity

// Grid 是 N×N 的地形编码，按行主序平铺：idx = y*N + x。
type Grid struct {
	Size  int
	Cells []Tile
}

func NewGrid(size int) *Grid {
	return &Grid{Size: size, Cells: make([]Tile, size*size)}
}

func (g *Grid) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Size && y < g.Size
}

func (g *Grid) Index(x, y int) int {
	return y*g.Size + x
}

func (g *Grid) At(x, y int) Tile {
	return g.Cells[y*g.Size+x]
}

func (g *Grid) Set(x, y int, t Tile) {
	g.Cells[y*g.Size+x] = t
}

func (g *Grid) Clone() *Grid {
	out := &Grid{Size: g.Size, Cells: make([]Tile, len(g.Cells))}
	copy(out.Cells, g.Cells)
	return out
}

// ProvinceGrid 是 N×N 的省份 id，0 表示 void。
type ProvinceGrid struct {
	Size  int
	Cells []ProvinceID
}

func NewProvinceGrid(size int) *ProvinceGrid {
	return &ProvinceGrid{Size: size, Cells: make([]ProvinceID, size*size)}
}

func (g *ProvinceGrid) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Size && y < g.Size
}

func (g *ProvinceGrid) At(x, y int) ProvinceID {
	return g.Cells[y*g.Size+x]
}

func (g *ProvinceGrid) Set(x, y int, id ProvinceID) {
	g.Cells[y*g.Size+x] = id
}
