package gemcad

// StandardBrilliantID is the identifier the fallback cut is cached under.
const StandardBrilliantID = "standard-brilliant"

// StandardBrilliant returns a fresh copy of the built-in round brilliant,
// used when a requested description cannot be fetched.
func StandardBrilliant() *Cut {
	girdle := []int{62, 58, 54, 50, 46, 42, 38, 34, 30, 26, 22, 18, 14, 10, 6, 2}
	mains := []int{60, 52, 44, 36, 28, 20, 12, 4}
	return &Cut{
		GearTeeth:       64,
		Symmetry:        8,
		RefractiveIndex: 1.54,
		Name:            "Standard Brilliant",
		Facets: []Facet{
			{Angle: 90, Distance: 1.08976142, Name: "1", BaseIndex: 62, Indices: girdle},
			{Angle: -42.1, Distance: 0.67323345, Name: "2", BaseIndex: 62, Indices: append([]int(nil), girdle...)},
			{Angle: -41, Distance: 0.67059234, Name: "3", BaseIndex: 60, Indices: mains},
			{Angle: 42.3, Distance: 0.81888273, Name: "A", BaseIndex: 2,
				Indices: []int{2, 6, 10, 14, 18, 22, 26, 30, 34, 38, 42, 46, 50, 54, 58, 62}},
			{Angle: 35, Distance: 0.73195538, Name: "B", BaseIndex: 4, Indices: []int{4, 12, 20, 28, 36, 44, 52, 60}},
			{Angle: 19.8, Distance: 0.60592194, Name: "C", BaseIndex: 8, Indices: []int{8, 16, 24, 32, 40, 48, 56}},
			{Angle: 0, Distance: 0.41817240, Name: "D", BaseIndex: 0, Indices: []int{0}},
		},
	}
}
