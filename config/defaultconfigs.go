package config

var DefaultConfig Config
var DefaultTheme Theme

func init() {
	DefaultTheme = Theme{
		DrawEdgeGlyphs:     true,
		ShowPieceNumbers:   true,
		HighlightIncorrect: true,
		Colors: ConfigColors{
			BoardColor:     180,
			BoardColorAlt:  186,
			EmptySlotColor: 238,
			EdgeColor:      94,
			CorrectColor:   108,
			IncorrectColor: 167,
			CursorColorBG:  4,
			HeldColorBG:    2,
			TrayColor:      250,
		},
		Symbols: ConfigSymbols{
			Convex:    '●',
			Concave:   '○',
			EmptySlot: '·',
			Corner:    '┼',
		},
	}

	DefaultConfig = Config{
		Theme: DefaultTheme,
		Game: GameConfig{
			EnableRotation: false,
			EnableFlip:     false,
			DefaultRows:    4,
			DefaultCols:    4,
			PieceWidth:     100,
			PieceHeight:    100,
			HistoryDepth:   50,
			SaveTTLHours:   24,
			Autosave:       true,
		},
	}
}
