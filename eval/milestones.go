// Package eval tracks scoring milestones across a gameplay session:
// one-time credit for each newly seen species, badge, and location,
// with a monotonic running total that survives session resumption.
package eval

// Difficulty ratings. Higher means rarer, harder to obtain, or reached
// later in the game.

// Species acquisition difficulty (0.5 - 10.5).
var speciesPoints = map[string]float64{
	// Free or ubiquitous
	"PIDGEY": 0.5, "RATTATA": 0.5, "WEEDLE": 0.5, "CATERPIE": 0.5,
	"KAKUNA": 0.5, "METAPOD": 0.5, "ZUBAT": 0.5,
	"BULBASAUR": 0.5, "CHARMANDER": 0.5, "SQUIRTLE": 0.5,
	// Very common wild encounters
	"SPEAROW": 1.0, "GEODUDE": 1.0, "NIDORAN_M": 1.0, "NIDORAN_F": 1.0,
	"MAGIKARP": 1.0,
	// Common with version restrictions or one evolution step
	"EKANS": 1.5, "MANKEY": 1.5, "ODDISH": 1.5, "POLIWAG": 1.5,
	"GOLDEEN": 1.5, "BEEDRILL": 1.5, "BUTTERFREE": 1.5,
	// Evolved forms, less common wild
	"PIDGEOTTO": 2.0, "RATICATE": 2.0, "GOLBAT": 2.0, "GLOOM": 2.0,
	// Location-specific encounters
	"DIGLETT": 2.5, "DROWZEE": 2.5, "GASTLY": 2.5, "TENTACOOL": 2.5,
	"MACHOP": 2.5, "GYARADOS": 2.5,
	// Moderately rare
	"FEAROW": 3.0, "ARBOK": 3.0, "NIDORINO": 3.0, "NIDORINA": 3.0,
	"CLEFAIRY": 3.0, "JIGGLYPUFF": 3.0, "PRIMEAPE": 3.0,
	// Extra items or limited availability
	"ONIX": 3.5, "SLOWPOKE": 3.5, "PSYDUCK": 3.5, "GROWLITHE": 3.5,
	"MAGNEMITE": 3.5, "VOLTORB": 3.5, "NIDOKING": 3.5, "NIDOQUEEN": 3.5,
	// Scarce encounters or higher evolutions
	"GRAVELER": 4.0, "MACHOKE": 4.0, "HAUNTER": 4.0, "HYPNO": 4.0,
	"PONYTA": 4.0, "SEEL": 4.0, "PIDGEOT": 4.0, "PIKACHU": 4.0,
	// Special environments or fossils
	"EXEGGCUTE": 4.5, "CUBONE": 4.5, "RHYHORN": 4.5, "STARYU": 4.5,
	"SHELLDER": 4.5, "HORSEA": 4.5, "VENONAT": 4.5,
	// Evolution stones
	"RAICHU": 5.0, "NINETALES": 5.0, "ARCANINE": 5.0, "VILEPLUME": 5.0,
	"CLOYSTER": 5.0, "STARMIE": 5.0, "EXEGGUTOR": 5.0, "MAROWAK": 5.0,
	// Trade evolutions and high-level evolutions
	"GENGAR": 5.5, "ALAKAZAM": 5.5, "MACHAMP": 5.5, "GOLEM": 5.5,
	"DRAGONAIR": 5.5, "KABUTOPS": 5.5, "OMASTAR": 5.5, "RHYDON": 5.5,
	// Late-game or static encounters
	"LAPRAS": 7.0, "DITTO": 7.0, "EEVEE": 7.0, "DRATINI": 7.5,
	"KABUTO": 8.0, "OMANYTE": 8.0, "PORYGON": 8.5,
	"SNORLAX": 9.0, "DRAGONITE": 9.0, "AERODACTYL": 9.0,
	// Legendary birds
	"ARTICUNO": 9.5, "ZAPDOS": 9.5, "MOLTRES": 9.5,
	// Post-game and mythical
	"MEWTWO": 10.0, "MEW": 10.5,
}

// Badge acquisition difficulty (7.0 - 20.0).
var badgePoints = map[string]float64{
	"BOULDER": 7.0,
	"CASCADE": 8.5,
	"THUNDER": 10.0,
	"RAINBOW": 11.0,
	"SOUL":    13.0,
	"MARSH":   16.0,
	"VOLCANO": 18.0,
	"EARTH":   20.0,
}

// Location exploration difficulty (1.0 - 7.0+), keyed by location name.
var locationPoints = map[string]float64{
	"PALLET_TOWN": 1.0, "VIRIDIAN_CITY": 1.0, "ROUTE_1": 1.0,
	"ROUTE_2": 1.0, "ROUTE_22": 1.0, "PLAYERS_HOUSE_1F": 1.0,
	"PLAYERS_HOUSE_2F": 1.0, "RIVALS_HOUSE": 1.0, "OAKS_LAB": 1.0,
	"VIRIDIAN_POKECENTER": 1.0, "VIRIDIAN_MART": 1.0,
	"VIRIDIAN_SCHOOL": 1.0, "VIRIDIAN_HOUSE": 1.0, "VIRIDIAN_FOREST": 1.0,
	"PEWTER_CITY": 1.5, "ROUTE_3": 1.5, "MUSEUM_1F": 1.5,
	"MUSEUM_2F": 1.5, "PEWTER_GYM": 1.5, "PEWTER_MART": 1.5,
	"PEWTER_POKECENTER": 1.5, "ROUTE_4": 1.5,
	"CERULEAN_CITY": 2.0, "ROUTE_5": 2.0, "ROUTE_6": 2.0,
	"ROUTE_9": 2.0, "ROUTE_10": 2.0, "ROUTE_24": 2.0, "ROUTE_25": 2.0,
	"MT_MOON_1F": 2.0, "MT_MOON_B1F": 2.0, "MT_MOON_B2F": 2.0,
	"CERULEAN_GYM": 2.0, "CERULEAN_POKECENTER": 2.0, "BIKE_SHOP": 2.0,
	"CERULEAN_MART": 2.0, "CERULEAN_TRASHED_HOUSE": 2.0,
	"CERULEAN_TRADE_HOUSE": 2.0,
	"VERMILION_CITY": 2.5, "ROUTE_7": 2.5, "ROUTE_8": 2.5,
	"ROUTE_11": 2.5,
	"LAVENDER_TOWN": 3.0, "POKEMON_TOWER_1F": 3.0,
	"POKEMON_TOWER_7F": 3.5,
	"CELADON_CITY": 3.0, "SAFFRON_CITY": 4.0, "FUCHSIA_CITY": 4.5,
	"CINNABAR_ISLAND": 5.0,
	"ROUTE_23": 6.0, "VICTORY_ROAD_1F": 6.0, "VICTORY_ROAD_2F": 6.5,
	"VICTORY_ROAD_3F": 6.5, "INDIGO_PLATEAU": 6.5,
	"CHAMPIONS_ROOM": 7.0, "HALL_OF_FAME": 7.0,
}

// SpeciesPoints returns the credit for first catching a species,
// or 0 for unrated names.
func SpeciesPoints(name string) float64 { return speciesPoints[name] }

// BadgePoints returns the credit for first earning a badge.
func BadgePoints(name string) float64 { return badgePoints[name] }

// LocationPoints returns the credit for first visiting a location.
func LocationPoints(name string) float64 { return locationPoints[name] }
