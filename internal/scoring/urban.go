package scoring

import "strings"

// urbanLGAs is the closed set of Nigerian LGAs treated as urban for the
// Economic Igniter's is_urban_lga() lookup. This is a fixed
// reference list, not derived from any live source; it does not grow at
// runtime.
var urbanLGAs = map[string]struct{}{
	"ikeja": {}, "lagos island": {}, "eti-osa": {}, "surulere": {}, "apapa": {},
	"agege": {}, "mushin": {}, "oshodi-isolo": {}, "alimosho": {}, "ajeromi-ifelodun": {},
	"abuja municipal": {}, "kuje": {}, "gwagwalada": {}, "bwari": {},
	"kano municipal": {}, "fagge": {}, "nassarawa": {}, "tarauni": {}, "dala": {},
	"ibadan north": {}, "ibadan south-west": {}, "ibadan north-east": {},
	"port harcourt": {}, "obio-akpor": {}, "eleme": {},
	"benin city": {}, "oredo": {}, "egor": {},
	"kaduna north": {}, "kaduna south": {}, "zaria": {},
	"enugu north": {}, "enugu south": {}, "enugu east": {},
	"owerri municipal": {}, "owerri north": {}, "owerri west": {},
	"calabar municipal": {}, "calabar south": {},
	"uyo": {}, "aba north": {}, "aba south": {},
	"warri south": {}, "sapele": {},
	"jos north": {}, "jos south": {}, "jos east": {},
	"makurdi": {}, "gboko": {},
	"sokoto north": {}, "sokoto south": {},
	"maiduguri": {}, "jere": {},
	"zamfara": {}, "gusau": {},
	"abeokuta south": {}, "abeokuta north": {},
	"osogbo": {}, "ilesa west": {},
	"akure south": {}, "ado-ekiti": {},
	"lokoja": {}, "minna": {},
}

// isUrbanLGA implements is_urban_lga() against the closed set above. The
// lookup is case-insensitive since upstream extraction does not
// consistently normalize LGA casing.
func isUrbanLGA(lga string) bool {
	_, ok := urbanLGAs[strings.ToLower(strings.TrimSpace(lga))]
	return ok
}
