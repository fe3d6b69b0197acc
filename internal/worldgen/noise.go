package worldgen

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// NoiseField 是按种子确定的梯度噪声采样器，同一 seed 与坐标永远返回同一值。
type NoiseField struct {
	noise opensimplex.Noise
}

func NewNoiseField(seed int64) *NoiseField {
	return &NoiseField{noise: opensimplex.NewNormalized(seed)}
}

// Value 返回 [0,1] 的单层噪声。
func (f *NoiseField) Value(x, y float64) float64 {
	return f.noise.Eval2(x, y)
}

// Signed 返回 [-1,1] 的单层噪声。
func (f *NoiseField) Signed(x, y float64) float64 {
	return f.noise.Eval2(x, y)*2 - 1
}

// Octaves 叠加多层频率，结果归一化到 [-1,1]。
func (f *NoiseField) Octaves(x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		total += f.Signed(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	if maxVal == 0 {
		return 0
	}
	return total / maxVal
}
