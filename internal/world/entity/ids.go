package entity

import "fmt"

type WorldID string

type KingdomID string

// ProvinceID 为 0 表示空白区（void）。
type ProvinceID uint16

const VoidProvince ProvinceID = 0

type Point struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Key 是 ownership 稀疏表的字段名，形如 "12_40"。
func (p Point) Key() string {
	return fmt.Sprintf("%d_%d", p.X, p.Y)
}

// Neighbors8 返回八邻域坐标（不做越界裁剪）。
func (p Point) Neighbors8() [8]Point {
	return [8]Point{
		{p.X - 1, p.Y - 1}, {p.X, p.Y - 1}, {p.X + 1, p.Y - 1},
		{p.X - 1, p.Y}, {p.X + 1, p.Y},
		{p.X - 1, p.Y + 1}, {p.X, p.Y + 1}, {p.X + 1, p.Y + 1},
	}
}
