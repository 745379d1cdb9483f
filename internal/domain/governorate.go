package domain

// Governorate is one of the 24 Tunisian governorates
type Governorate string

const (
	GovernorateTunis      Governorate = "tunis"
	GovernorateAriana     Governorate = "ariana"
	GovernorateBenArous   Governorate = "ben_arous"
	GovernorateManouba    Governorate = "manouba"
	GovernorateNabeul     Governorate = "nabeul"
	GovernorateZaghouan   Governorate = "zaghouan"
	GovernorateBizerte    Governorate = "bizerte"
	GovernorateBeja       Governorate = "beja"
	GovernorateJendouba   Governorate = "jendouba"
	GovernorateKef        Governorate = "kef"
	GovernorateSiliana    Governorate = "siliana"
	GovernorateSousse     Governorate = "sousse"
	GovernorateMonastir   Governorate = "monastir"
	GovernorateMahdia     Governorate = "mahdia"
	GovernorateSfax       Governorate = "sfax"
	GovernorateKairouan   Governorate = "kairouan"
	GovernorateKasserine  Governorate = "kasserine"
	GovernorateSidiBouzid Governorate = "sidi_bouzid"
	GovernorateGabes      Governorate = "gabes"
	GovernorateMedenine   Governorate = "medenine"
	GovernorateTataouine  Governorate = "tataouine"
	GovernorateGafsa      Governorate = "gafsa"
	GovernorateTozeur     Governorate = "tozeur"
	GovernorateKebili     Governorate = "kebili"
)

// ShippingZone groups governorates by delivery cost tier
type ShippingZone int

const (
	// Capital region: cheapest flat fee
	ZoneCapital ShippingZone = iota + 1
	ZoneNorth
	ZoneCenter
	ZoneSouth
)

var governorateZones = map[Governorate]ShippingZone{
	GovernorateTunis:      ZoneCapital,
	GovernorateAriana:     ZoneCapital,
	GovernorateBenArous:   ZoneCapital,
	GovernorateManouba:    ZoneCapital,
	GovernorateNabeul:     ZoneNorth,
	GovernorateZaghouan:   ZoneNorth,
	GovernorateBizerte:    ZoneNorth,
	GovernorateBeja:       ZoneNorth,
	GovernorateJendouba:   ZoneNorth,
	GovernorateKef:        ZoneNorth,
	GovernorateSiliana:    ZoneNorth,
	GovernorateSousse:     ZoneCenter,
	GovernorateMonastir:   ZoneCenter,
	GovernorateMahdia:     ZoneCenter,
	GovernorateSfax:       ZoneCenter,
	GovernorateKairouan:   ZoneCenter,
	GovernorateKasserine:  ZoneCenter,
	GovernorateSidiBouzid: ZoneCenter,
	GovernorateGabes:      ZoneSouth,
	GovernorateMedenine:   ZoneSouth,
	GovernorateTataouine:  ZoneSouth,
	GovernorateGafsa:      ZoneSouth,
	GovernorateTozeur:     ZoneSouth,
	GovernorateKebili:     ZoneSouth,
}

// String returns the zone's wire name
func (z ShippingZone) String() string {
	switch z {
	case ZoneCapital:
		return "capital"
	case ZoneNorth:
		return "north"
	case ZoneCenter:
		return "center"
	case ZoneSouth:
		return "south"
	default:
		return "unknown"
	}
}

// IsValid checks if the governorate is one of the 24 known values
func (g Governorate) IsValid() bool {
	_, ok := governorateZones[g]
	return ok
}

// Zone returns the shipping zone for the governorate.
// Unknown governorates map to the most expensive zone so a bad value
// never undercharges shipping.
func (g Governorate) Zone() ShippingZone {
	if z, ok := governorateZones[g]; ok {
		return z
	}
	return ZoneSouth
}

// Governorates returns all 24 governorates in a stable order
func Governorates() []Governorate {
	return []Governorate{
		GovernorateTunis, GovernorateAriana, GovernorateBenArous, GovernorateManouba,
		GovernorateNabeul, GovernorateZaghouan, GovernorateBizerte, GovernorateBeja,
		GovernorateJendouba, GovernorateKef, GovernorateSiliana,
		GovernorateSousse, GovernorateMonastir, GovernorateMahdia, GovernorateSfax,
		GovernorateKairouan, GovernorateKasserine, GovernorateSidiBouzid,
		GovernorateGabes, GovernorateMedenine, GovernorateTataouine,
		GovernorateGafsa, GovernorateTozeur, GovernorateKebili,
	}
}
