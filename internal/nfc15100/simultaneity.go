package nfc15100

// SimultaneityBand is one row of the distribution-board diversity table.
type SimultaneityBand struct {
	MinCircuits int
	MaxCircuits int // 0 = no upper bound
	Factor      float64
	Description string
}

// Simultaneity factors for a distribution board by number of outgoing circuits
// (NF C 15-100 / UTE C 15-105, table B).
var SimultaneityBands = []SimultaneityBand{
	{MinCircuits: 1, MaxCircuits: 1, Factor: 1.0, Description: "single circuit"},
	{MinCircuits: 2, MaxCircuits: 3, Factor: 0.9, Description: "2 and 3 circuits"},
	{MinCircuits: 4, MaxCircuits: 5, Factor: 0.8, Description: "4 and 5 circuits"},
	{MinCircuits: 6, MaxCircuits: 9, Factor: 0.7, Description: "6 to 9 circuits"},
	{MinCircuits: 10, MaxCircuits: 0, Factor: 0.6, Description: "10 circuits and more"},
}

// SimultaneityFactor returns the diversity factor ks applied to the summed
// load of n circuits fed from the same board.
func SimultaneityFactor(n int) float64 {
	for _, band := range SimultaneityBands {
		if n >= band.MinCircuits && (band.MaxCircuits == 0 || n <= band.MaxCircuits) {
			return band.Factor
		}
	}
	return 1.0
}

// BoardLoad holds the per-circuit loads of one distribution board.
type BoardLoad struct {
	CircuitPowers []float64 // W
}

// DiversifiedPower returns the feeder power Σ P × ks for the board.
func (b BoardLoad) DiversifiedPower() float64 {
	var sum float64
	for _, p := range b.CircuitPowers {
		sum += p
	}
	return sum * SimultaneityFactor(len(b.CircuitPowers))
}
