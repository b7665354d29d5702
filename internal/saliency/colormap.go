package saliency

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// jetStops опорные точки палитры jet: тёмно-синий → голубой → жёлтый → тёмно-красный.
var jetStops = []struct {
	pos float64
	hex string
}{
	{0.0, "#00007f"},
	{0.125, "#0000ff"},
	{0.375, "#00ffff"},
	{0.625, "#ffff00"},
	{0.875, "#ff0000"},
	{1.0, "#7f0000"},
}

var jetTable = buildJetTable()

func buildJetTable() [256]color.RGBA {
	stops := make([]colorful.Color, len(jetStops))
	for i, s := range jetStops {
		c, err := colorful.Hex(s.hex)
		if err != nil {
			panic(err)
		}
		stops[i] = c
	}

	var table [256]color.RGBA
	seg := 0
	for i := range table {
		t := float64(i) / 255
		for seg < len(jetStops)-2 && t > jetStops[seg+1].pos {
			seg++
		}
		a, b := jetStops[seg], jetStops[seg+1]
		c := stops[seg].BlendRgb(stops[seg+1], (t-a.pos)/(b.pos-a.pos)).Clamped()
		r, g, bl := c.RGB255()
		table[i] = color.RGBA{R: r, G: g, B: bl, A: 255}
	}
	return table
}

// Jet возвращает цвет палитры jet для 8-битного значения в порядке RGB.
func Jet(v uint8) color.RGBA {
	return jetTable[v]
}
