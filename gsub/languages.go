package gsub

import (
	"golang.org/x/text/language"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
)

// OpenType language system tags for Chinese.
var (
	ZHS = ot.T("ZHS") // Chinese, simplified
	ZHT = ot.T("ZHT") // Chinese, traditional
	ZHH = ot.T("ZHH") // Chinese, Hong Kong
)

var (
	hk = language.MustParseRegion("HK")
	mo = language.MustParseRegion("MO")
	tw = language.MustParseRegion("TW")
)

// LanguageTag maps a BCP 47 tag to an OpenType language system tag. Only
// Chinese is supported.
func LanguageTag(tag language.Tag) (ot.Tag, error) {
	base, _ := tag.Base()
	if base.String() != "zh" {
		return 0, ot.Errorf(ot.ConfigurationError, tag.String(), "unsupported language, only Chinese is supported")
	}
	region, conf := tag.Region()
	if conf != language.No {
		switch region {
		case hk, mo:
			return ZHH, nil
		case tw:
			return ZHT, nil
		}
	}
	if script, _ := tag.Script(); script.String() == "Hant" {
		return ZHT, nil
	}
	return ZHS, nil
}

// languageSystems returns the language systems to register features with.
// Default systems come first, followed by configured languages in the order
// given, without duplicates.
func languageSystems(tags []language.Tag) ([]string, error) {
	systems := []string{
		ot.LangSysKey(ot.DFLT, ot.DFLT),
		ot.LangSysKey(ot.Hani, ot.DFLT),
		ot.LangSysKey(ot.Latn, ot.DFLT),
	}
	seen := make(map[string]bool)
	for _, t := range tags {
		lang, err := LanguageTag(t)
		if err != nil {
			return nil, err
		}
		sys := ot.LangSysKey(ot.Hani, lang)
		if !seen[sys] {
			seen[sys] = true
			systems = append(systems, sys)
		}
	}
	return systems, nil
}
