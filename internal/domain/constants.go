package domain

const (
	// SeatCount is the number of fixed seats at a Hearts table.
	SeatCount = 4
	// DeckSize is the number of cards created for every deal.
	DeckSize = 52
	// HandSize is the number of cards each seat receives.
	HandSize = DeckSize / SeatCount
	// TricksPerDeal is the number of tricks played from one deal.
	TricksPerDeal = HandSize
	// PassCount is the number of cards each seat passes between deals.
	PassCount = 3
	// DefaultTargetScore ends the game once any seat reaches it after a deal.
	DefaultTargetScore = 100
)
