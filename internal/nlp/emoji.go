package nlp

import "unicode"

// emojiTable cubre los bloques pictograficos. A diferencia de la propiedad Unicode Emoji,
// no incluye digitos, '#' ni '*' y tampoco selectores de variacion o ZWJ.
var emojiTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00a9, Hi: 0x00a9, Stride: 1},
		{Lo: 0x00ae, Hi: 0x00ae, Stride: 1},
		{Lo: 0x203c, Hi: 0x203c, Stride: 1},
		{Lo: 0x2049, Hi: 0x2049, Stride: 1},
		{Lo: 0x2122, Hi: 0x2122, Stride: 1},
		{Lo: 0x2139, Hi: 0x2139, Stride: 1},
		{Lo: 0x2194, Hi: 0x21aa, Stride: 1},
		{Lo: 0x231a, Hi: 0x23ff, Stride: 1},
		{Lo: 0x24c2, Hi: 0x24c2, Stride: 1},
		{Lo: 0x25aa, Hi: 0x25fe, Stride: 1},
		{Lo: 0x2600, Hi: 0x27bf, Stride: 1},
		{Lo: 0x2934, Hi: 0x2935, Stride: 1},
		{Lo: 0x2b05, Hi: 0x2b55, Stride: 1},
		{Lo: 0x3030, Hi: 0x3030, Stride: 1},
		{Lo: 0x303d, Hi: 0x303d, Stride: 1},
		{Lo: 0x3297, Hi: 0x3299, Stride: 2},
	},
	LatinOffset: 2,
	R32: []unicode.Range32{
		{Lo: 0x1f000, Hi: 0x1f2ff, Stride: 1},
		{Lo: 0x1f300, Hi: 0x1faff, Stride: 1},
	},
}

func countEmoji(text string) int {
	n := 0
	for _, r := range text {
		if unicode.Is(emojiTable, r) {
			n++
		}
	}
	return n
}
