package hgvs

// AminoAcidThreeToOne maps three-letter amino acid codes to single-letter codes.
var AminoAcidThreeToOne = map[string]byte{
	"Ala": 'A', "Cys": 'C', "Asp": 'D', "Glu": 'E',
	"Phe": 'F', "Gly": 'G', "His": 'H', "Ile": 'I',
	"Lys": 'K', "Leu": 'L', "Met": 'M', "Asn": 'N',
	"Pro": 'P', "Gln": 'Q', "Arg": 'R', "Ser": 'S',
	"Thr": 'T', "Val": 'V', "Trp": 'W', "Tyr": 'Y',
	"Sec": 'U', "Pyl": 'O', "Ter": '*', "Xaa": 'X',
}

// Symbolic alternates.
const (
	SymbolSynonymous = "="
	SymbolUnknown    = "?"
	SymbolStop       = "Ter"
)

// IsAminoAcid reports whether code is a known three-letter amino acid code
// (including Ter and Xaa).
func IsAminoAcid(code string) bool {
	_, ok := AminoAcidThreeToOne[code]
	return ok
}

// aaOne converts a three-letter code to its single-letter code.
// Symbols and unknown codes are returned unchanged.
func aaOne(code string) string {
	if one, ok := AminoAcidThreeToOne[code]; ok {
		return string(one)
	}
	return code
}
