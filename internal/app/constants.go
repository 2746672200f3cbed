package app

// BotSeats is the number of seats filled with bots when a game is created.
const BotSeats = 3

// maxAdvanceSteps bounds one Advance call. A full game to 100 points needs
// far fewer steps; hitting the bound means the state stopped changing.
const maxAdvanceSteps = 20000
