package memory

// Species names indexed by National Dex number. Cores adapting a real
// engine translate the internal index to dex numbering before exposing
// the party; see the reader contract in reader.go.
var speciesNames = [152]string{
	1: "BULBASAUR", 2: "IVYSAUR", 3: "VENUSAUR", 4: "CHARMANDER",
	5: "CHARMELEON", 6: "CHARIZARD", 7: "SQUIRTLE", 8: "WARTORTLE",
	9: "BLASTOISE", 10: "CATERPIE", 11: "METAPOD", 12: "BUTTERFREE",
	13: "WEEDLE", 14: "KAKUNA", 15: "BEEDRILL", 16: "PIDGEY",
	17: "PIDGEOTTO", 18: "PIDGEOT", 19: "RATTATA", 20: "RATICATE",
	21: "SPEAROW", 22: "FEAROW", 23: "EKANS", 24: "ARBOK",
	25: "PIKACHU", 26: "RAICHU", 27: "SANDSHREW", 28: "SANDSLASH",
	29: "NIDORAN_F", 30: "NIDORINA", 31: "NIDOQUEEN", 32: "NIDORAN_M",
	33: "NIDORINO", 34: "NIDOKING", 35: "CLEFAIRY", 36: "CLEFABLE",
	37: "VULPIX", 38: "NINETALES", 39: "JIGGLYPUFF", 40: "WIGGLYTUFF",
	41: "ZUBAT", 42: "GOLBAT", 43: "ODDISH", 44: "GLOOM",
	45: "VILEPLUME", 46: "PARAS", 47: "PARASECT", 48: "VENONAT",
	49: "VENOMOTH", 50: "DIGLETT", 51: "DUGTRIO", 52: "MEOWTH",
	53: "PERSIAN", 54: "PSYDUCK", 55: "GOLDUCK", 56: "MANKEY",
	57: "PRIMEAPE", 58: "GROWLITHE", 59: "ARCANINE", 60: "POLIWAG",
	61: "POLIWHIRL", 62: "POLIWRATH", 63: "ABRA", 64: "KADABRA",
	65: "ALAKAZAM", 66: "MACHOP", 67: "MACHOKE", 68: "MACHAMP",
	69: "BELLSPROUT", 70: "WEEPINBELL", 71: "VICTREEBEL", 72: "TENTACOOL",
	73: "TENTACRUEL", 74: "GEODUDE", 75: "GRAVELER", 76: "GOLEM",
	77: "PONYTA", 78: "RAPIDASH", 79: "SLOWPOKE", 80: "SLOWBRO",
	81: "MAGNEMITE", 82: "MAGNETON", 83: "FARFETCHD", 84: "DODUO",
	85: "DODRIO", 86: "SEEL", 87: "DEWGONG", 88: "GRIMER",
	89: "MUK", 90: "SHELLDER", 91: "CLOYSTER", 92: "GASTLY",
	93: "HAUNTER", 94: "GENGAR", 95: "ONIX", 96: "DROWZEE",
	97: "HYPNO", 98: "KRABBY", 99: "KINGLER", 100: "VOLTORB",
	101: "ELECTRODE", 102: "EXEGGCUTE", 103: "EXEGGUTOR", 104: "CUBONE",
	105: "MAROWAK", 106: "HITMONLEE", 107: "HITMONCHAN", 108: "LICKITUNG",
	109: "KOFFING", 110: "WEEZING", 111: "RHYHORN", 112: "RHYDON",
	113: "CHANSEY", 114: "TANGELA", 115: "KANGASKHAN", 116: "HORSEA",
	117: "SEADRA", 118: "GOLDEEN", 119: "SEAKING", 120: "STARYU",
	121: "STARMIE", 122: "MR_MIME", 123: "SCYTHER", 124: "JYNX",
	125: "ELECTABUZZ", 126: "MAGMAR", 127: "PINSIR", 128: "TAUROS",
	129: "MAGIKARP", 130: "GYARADOS", 131: "LAPRAS", 132: "DITTO",
	133: "EEVEE", 134: "VAPOREON", 135: "JOLTEON", 136: "FLAREON",
	137: "PORYGON", 138: "OMANYTE", 139: "OMASTAR", 140: "KABUTO",
	141: "KABUTOPS", 142: "AERODACTYL", 143: "SNORLAX", 144: "ARTICUNO",
	145: "ZAPDOS", 146: "MOLTRES", 147: "DRATINI", 148: "DRAGONAIR",
	149: "DRAGONITE", 150: "MEWTWO", 151: "MEW",
}

// SpeciesName resolves a dex number to a species name.
func SpeciesName(id byte) string {
	if int(id) < len(speciesNames) && speciesNames[id] != "" {
		return speciesNames[id]
	}
	return "UNKNOWN"
}

// Badge names in bitfield order (bit 0 first).
var badgeNames = [8]string{
	"BOULDER", "CASCADE", "THUNDER", "RAINBOW",
	"SOUL", "MARSH", "VOLCANO", "EARTH",
}

// locationNames maps Pokémon Red map ids to location names. Towns,
// routes, and the early interiors cover the space the harness observes.
var locationNames = map[byte]string{
	0x00: "PALLET_TOWN",
	0x01: "VIRIDIAN_CITY",
	0x02: "PEWTER_CITY",
	0x03: "CERULEAN_CITY",
	0x04: "LAVENDER_TOWN",
	0x05: "VERMILION_CITY",
	0x06: "CELADON_CITY",
	0x07: "FUCHSIA_CITY",
	0x08: "CINNABAR_ISLAND",
	0x09: "INDIGO_PLATEAU",
	0x0A: "SAFFRON_CITY",
	0x0C: "ROUTE_1",
	0x0D: "ROUTE_2",
	0x0E: "ROUTE_3",
	0x0F: "ROUTE_4",
	0x10: "ROUTE_5",
	0x11: "ROUTE_6",
	0x12: "ROUTE_7",
	0x13: "ROUTE_8",
	0x14: "ROUTE_9",
	0x15: "ROUTE_10",
	0x16: "ROUTE_11",
	0x17: "ROUTE_12",
	0x18: "ROUTE_13",
	0x19: "ROUTE_14",
	0x1A: "ROUTE_15",
	0x1B: "ROUTE_16",
	0x1C: "ROUTE_17",
	0x1D: "ROUTE_18",
	0x1E: "ROUTE_19",
	0x1F: "ROUTE_20",
	0x20: "ROUTE_21",
	0x21: "ROUTE_22",
	0x22: "ROUTE_23",
	0x23: "ROUTE_24",
	0x24: "ROUTE_25",
	0x25: "PLAYERS_HOUSE_1F",
	0x26: "PLAYERS_HOUSE_2F",
	0x27: "RIVALS_HOUSE",
	0x28: "OAKS_LAB",
	0x29: "VIRIDIAN_POKECENTER",
	0x2A: "VIRIDIAN_MART",
	0x2B: "VIRIDIAN_SCHOOL",
	0x2C: "VIRIDIAN_HOUSE",
	0x2D: "VIRIDIAN_GYM",
	0x33: "VIRIDIAN_FOREST",
	0x34: "MUSEUM_1F",
	0x35: "MUSEUM_2F",
	0x36: "PEWTER_GYM",
	0x37: "PEWTER_HOUSE_1",
	0x38: "PEWTER_MART",
	0x39: "PEWTER_HOUSE_2",
	0x3A: "PEWTER_POKECENTER",
	0x3B: "MT_MOON_1F",
	0x3C: "MT_MOON_B1F",
	0x3D: "MT_MOON_B2F",
	0x40: "CERULEAN_TRASHED_HOUSE",
	0x41: "CERULEAN_TRADE_HOUSE",
	0x42: "CERULEAN_POKECENTER",
	0x43: "CERULEAN_GYM",
	0x44: "BIKE_SHOP",
	0x45: "CERULEAN_MART",
	0x58: "POKEMON_TOWER_1F",
	0x59: "POKEMON_TOWER_2F",
	0x5A: "POKEMON_TOWER_3F",
	0x5B: "POKEMON_TOWER_4F",
	0x5C: "POKEMON_TOWER_5F",
	0x5D: "POKEMON_TOWER_6F",
	0x5E: "POKEMON_TOWER_7F",
	0xA5: "VICTORY_ROAD_1F",
	0xC6: "VICTORY_ROAD_2F",
	0xC7: "VICTORY_ROAD_3F",
	0x76: "HALL_OF_FAME",
	0x78: "CHAMPIONS_ROOM",
}

// LocationName resolves a map id to a location name.
func LocationName(mapID byte) string {
	if name, ok := locationNames[mapID]; ok {
		return name
	}
	return "UNKNOWN"
}

// Item names by Pokémon Red item id (partial: the items the harness
// commonly observes early game).
var itemNames = map[byte]string{
	0x01: "MASTER_BALL",
	0x02: "ULTRA_BALL",
	0x03: "GREAT_BALL",
	0x04: "POKE_BALL",
	0x05: "TOWN_MAP",
	0x06: "BICYCLE",
	0x0B: "ANTIDOTE",
	0x0C: "BURN_HEAL",
	0x0D: "ICE_HEAL",
	0x0E: "AWAKENING",
	0x0F: "PARLYZ_HEAL",
	0x10: "FULL_RESTORE",
	0x11: "MAX_POTION",
	0x12: "HYPER_POTION",
	0x13: "SUPER_POTION",
	0x14: "POTION",
	0x1D: "ESCAPE_ROPE",
	0x1E: "REPEL",
	0x28: "MOON_STONE",
	0x29: "NUGGET",
	0x2D: "POKEDEX",
	0x34: "OAKS_PARCEL",
	0x35: "ITEMFINDER",
	0x36: "SILPH_SCOPE",
	0x37: "POKE_FLUTE",
	0x3E: "GOLD_TEETH",
	0x3F: "SS_TICKET",
	0x48: "CARD_KEY",
	0x4C: "SECRET_KEY",
}

// ItemName resolves an item id to a name.
func ItemName(id byte) string {
	if name, ok := itemNames[id]; ok {
		return name
	}
	return "UNKNOWN"
}

// Move names by move id (partial, early-game coverage).
var moveNames = map[byte]string{
	0x01: "POUND",
	0x0A: "SCRATCH",
	0x21: "TACKLE",
	0x22: "BODY_SLAM",
	0x27: "TAIL_WHIP",
	0x2D: "GROWL",
	0x2B: "LEER",
	0x34: "EMBER",
	0x37: "WATER_GUN",
	0x39: "HYDRO_PUMP",
	0x4B: "RAZOR_LEAF",
	0x54: "THUNDERBOLT",
	0x55: "THUNDER_WAVE",
	0x56: "THUNDER",
	0x5F: "HYPNOSIS",
	0x62: "QUICK_ATTACK",
	0x6C: "WITHDRAW",
	0x74: "HARDEN",
	0x81: "STRING_SHOT",
	0x8F: "POISON_STING",
	0x96: "VINE_WHIP",
	0xA1: "SAND_ATTACK",
	0xD1: "SLASH",
}

// MoveName resolves a move id to a name.
func MoveName(id byte) string {
	if name, ok := moveNames[id]; ok {
		return name
	}
	return "UNKNOWN"
}

// Type names by Pokémon Red type id.
var typeNames = map[byte]string{
	0x00: "NORMAL",
	0x01: "FIGHTING",
	0x02: "FLYING",
	0x03: "POISON",
	0x04: "GROUND",
	0x05: "ROCK",
	0x07: "BUG",
	0x08: "GHOST",
	0x14: "FIRE",
	0x15: "WATER",
	0x16: "GRASS",
	0x17: "ELECTRIC",
	0x18: "PSYCHIC",
	0x19: "ICE",
	0x1A: "DRAGON",
}

// TypeName resolves a type id to a name.
func TypeName(id byte) string {
	if name, ok := typeNames[id]; ok {
		return name
	}
	return "UNKNOWN"
}

// Status condition bits in the party status byte.
const (
	statusSleepMask = 0x07
	statusPoison    = 1 << 3
	statusBurn      = 1 << 4
	statusFreeze    = 1 << 5
	statusParalysis = 1 << 6
)

// StatusName renders the status byte as a condition name, or "" when
// healthy.
func StatusName(status byte) string {
	switch {
	case status&statusSleepMask != 0:
		return "SLEEP"
	case status&statusPoison != 0:
		return "POISON"
	case status&statusBurn != 0:
		return "BURN"
	case status&statusFreeze != 0:
		return "FREEZE"
	case status&statusParalysis != 0:
		return "PARALYSIS"
	default:
		return ""
	}
}
