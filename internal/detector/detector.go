// Package detector resolves "auto" source languages to FLORES-200 tags
// using statistical language detection.
package detector

import (
	lingua "github.com/pemistahl/lingua-go"
)

// floresTags maps ISO 639-1 codes to the FLORES-200 tags the NLLB
// vocabulary understands. Languages outside this table fall back to the
// caller's default.
var floresTags = map[string]string{
	"AR": "arb_Arab",
	"BN": "ben_Beng",
	"DE": "deu_Latn",
	"EN": "eng_Latn",
	"ES": "spa_Latn",
	"FR": "fra_Latn",
	"GU": "guj_Gujr",
	"HI": "hin_Deva",
	"IT": "ita_Latn",
	"JA": "jpn_Jpan",
	"KO": "kor_Hang",
	"MR": "mar_Deva",
	"NL": "nld_Latn",
	"PA": "pan_Guru",
	"PL": "pol_Latn",
	"PT": "por_Latn",
	"RU": "rus_Cyrl",
	"TA": "tam_Taml",
	"TE": "tel_Telu",
	"TR": "tur_Latn",
	"UK": "ukr_Cyrl",
	"UR": "urd_Arab",
	"VI": "vie_Latn",
	"ZH": "zho_Hans",
}

// Detector wraps a lingua language detector. Building the underlying
// models is expensive; reuse the instance.
type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Detector{detector: detector}
}

// DetectTag returns the FLORES-200 tag for the dominant language of
// text, or false when the language is ambiguous or has no tag mapping.
func (d *Detector) DetectTag(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	tag, ok := floresTags[lang.IsoCode639_1().String()]
	return tag, ok
}
