package resolver

// knownPlayers is the static fast-path table. Odds feeds quote these
// names daily; resolving them locally saves a directory round trip.
var knownPlayers = map[string]int{
	"Stephen Curry":           201939,
	"LeBron James":            2544,
	"Nikola Jokic":            203999,
	"Giannis Antetokounmpo":   203507,
	"Luka Doncic":             1629029,
	"Kevin Durant":            201142,
	"Joel Embiid":             203954,
	"Damian Lillard":          203081,
	"Jayson Tatum":            1628369,
	"Anthony Davis":           203076,
	"Devin Booker":            1626164,
	"Shai Gilgeous-Alexander": 1628983,
	"Donovan Mitchell":        1628378,
	"Tyrese Maxey":            1630178,
	"De'Aaron Fox":            1628368,
	"Trae Young":              1629027,
	"Karl-Anthony Towns":      1626157,
	"Pascal Siakam":           1627783,
	"Julius Randle":           203944,
	"Jalen Brunson":           1628973,
	"Anthony Edwards":         1630162,
	"Ja Morant":               1629630,
	"Jimmy Butler":            202710,
	"Kawhi Leonard":           202695,
	"Paul George":             202331,
	"Kyrie Irving":            202681,
	"Bam Adebayo":             1628389,
	"Bradley Beal":            203078,
	"Zion Williamson":         1629627,
	"Brandon Ingram":          1627742,
}
