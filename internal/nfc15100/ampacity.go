package nfc15100

// Base ampacities (A) for copper conductors, PVC insulation, two loaded
// conductors, 30 °C ambient (20 °C ground for method D).
// IEC 60364-5-52 tables B.52.2 and B.52.10, as adopted by NF C 15-100 52H/52J.
// Rows are aligned with StandardSections.
var baseAmpacity = map[InstallationMethod][]float64{
	//                       1.5   2.5  4   6   10  16  25   35   50   70   95   120  150  185  240  300
	EnclosedInInsulation: {14.5, 19.5, 26, 34, 46, 61, 80, 99, 119, 151, 182, 210, 240, 273, 321, 367},
	Conduit:              {17.5, 24, 32, 41, 57, 76, 101, 125, 151, 192, 232, 269, 300, 341, 400, 458},
	WallSurface:          {19.5, 27, 36, 46, 63, 85, 112, 138, 168, 213, 258, 299, 344, 392, 461, 530},
	Buried:               {22, 29, 38, 47, 63, 81, 104, 125, 148, 183, 216, 246, 278, 312, 361, 408},
	FreeAir:              {22, 30, 40, 51, 70, 94, 119, 148, 180, 232, 282, 328, 379, 434, 514, 593},
}

// DefaultAmpacity returns a copy of the base ampacity table.
func DefaultAmpacity() map[InstallationMethod][]float64 {
	out := make(map[InstallationMethod][]float64, len(baseAmpacity))
	for m, row := range baseAmpacity {
		out[m] = append([]float64(nil), row...)
	}
	return out
}
