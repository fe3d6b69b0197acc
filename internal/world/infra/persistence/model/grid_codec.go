package model

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"Dominion/internal/world/entity"
)

// 网格整体压缩存储：地形每格 1 字节，省份 id 每格 2 字节小端。
var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

func EncodeTiles(g *entity.Grid) []byte {
	return encoder.EncodeAll(g.Cells, nil)
}

func DecodeTiles(size int, raw []byte) (*entity.Grid, error) {
	cells, err := decoder.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("decode tiles: %w", err)
	}
	if len(cells) != size*size {
		return nil, fmt.Errorf("decode tiles: got %d cells, want %d", len(cells), size*size)
	}
	return &entity.Grid{Size: size, Cells: cells}, nil
}

func EncodeProvinces(g *entity.ProvinceGrid) []byte {
	buf := make([]byte, 2*len(g.Cells))
	for i, id := range g.Cells {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(id))
	}
	return encoder.EncodeAll(buf, nil)
}

func DecodeProvinces(size int, raw []byte) (*entity.ProvinceGrid, error) {
	buf, err := decoder.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("decode provinces: %w", err)
	}
	if len(buf) != 2*size*size {
		return nil, fmt.Errorf("decode provinces: got %d bytes, want %d", len(buf), 2*size*size)
	}
	g := entity.NewProvinceGrid(size)
	for i := range g.Cells {
		g.Cells[i] = entity.ProvinceID(binary.LittleEndian.Uint16(buf[2*i:]))
	}
	return g, nil
}
