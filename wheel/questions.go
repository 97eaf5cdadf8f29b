package wheel

// レトロスペクティブの質問一覧。ルーレットのマスの並び順そのもの。
var RetroQuestions = []string{
	"¿Qué salió bien en este sprint?",
	"¿Qué podemos mejorar?",
	"¿Qué obstáculos enfrentamos?",
	"¿Qué aprendimos?",
	"¿Qué nos hizo perder tiempo?",
	"¿Qué debemos empezar a hacer?",
	"¿Qué debemos dejar de hacer?",
	"¿Qué debemos continuar haciendo?",
	"¿Cómo fue la comunicación del equipo?",
	"¿Se cumplieron los objetivos del sprint?",
	"¿Qué nos sorprendió positivamente?",
	"¿Qué nos sorprendió negativamente?",
	"¿Cómo podemos ser más eficientes?",
	"¿Qué herramientas nos ayudaron?",
	"¿Qué herramientas nos limitaron?",
	"¿Hubo buena colaboración?",
	"¿Las estimaciones fueron precisas?",
	"¿Qué celebramos como equipo?",
}

// ラッキーハートのマスのラベル
const LuckyHeartLabel = "❤️ ¡Corazón de la suerte!"

// Wedge はルーレットの1マス。ハートのマスは質問の代わりにハートを1つ与える。
type Wedge struct {
	Label string
	Heart bool
}

// DefaultWedges は質問18個にラッキーハートのマスを2つ挟んだ標準の並びを
// 返します。ハートの位置は固定で、全クライアントで同じ並びになる。
func DefaultWedges() []Wedge {
	wedges := make([]Wedge, 0, len(RetroQuestions)+2)
	for i, q := range RetroQuestions {
		// 6マス目と14マス目の手前にハートを挟む
		if i == 5 || i == 13 {
			wedges = append(wedges, Wedge{Label: LuckyHeartLabel, Heart: true})
		}
		wedges = append(wedges, Wedge{Label: q})
	}
	return wedges
}
