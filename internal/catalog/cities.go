package catalog

import "sort"

// City is one of the metropolitan areas covered by the corpus. The tile grid
// of each city is GridRows x GridCols cells of 100 m.
type City struct {
	Name     string
	GridRows int
	GridCols int
}

// Tiles returns the number of grid cells in the city.
func (c City) Tiles() int {
	return c.GridRows * c.GridCols
}

var cities = []City{
	{"Bordeaux", 334, 342},
	{"Clermont-Ferrand", 208, 268},
	{"Dijon", 195, 234},
	{"Grenoble", 409, 251},
	{"Lille", 330, 342},
	{"Lyon", 426, 287},
	{"Mans", 228, 246},
	{"Marseille", 211, 210},
	{"Metz", 226, 269},
	{"Montpellier", 334, 327},
	{"Nancy", 151, 165},
	{"Nantes", 277, 425},
	{"Nice", 150, 214},
	{"Orleans", 282, 256},
	{"Paris", 409, 346},
	{"Rennes", 423, 370},
	{"Saint-Etienne", 305, 501},
	{"Strasbourg", 296, 258},
	{"Toulouse", 280, 347},
	{"Tours", 251, 270},
}

var citiesByName = func() map[string]City {
	m := make(map[string]City, len(cities))
	for _, c := range cities {
		m[c.Name] = c
	}
	return m
}()

// Cities returns every city in alphabetical order.
func Cities() []City {
	out := make([]City, len(cities))
	copy(out, cities)
	return out
}

// CityNames returns the sorted city names.
func CityNames() []string {
	names := make([]string, 0, len(cities))
	for _, c := range cities {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

// LookupCity finds a city by its exact name.
func LookupCity(name string) (City, bool) {
	c, ok := citiesByName[name]
	return c, ok
}
