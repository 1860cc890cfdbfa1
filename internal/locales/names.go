// Package locales holds a static, cosmetic table of human-readable locale
// display names. It is never authoritative about which locales exist (the
// monitor discovers that dynamically from Apple's own index page, spec §3,
// §4.1); this table is the only source of display labels, since no names
// are read from Apple's pages, and a code missing from it is shown as the
// bare `xx-yy` tag.
package locales

// fallbackNames maps an `xx-yy` locale tag to a "Language/Region" label.
// Based on ISO 639-1 language codes and ISO 3166-1 alpha-2 region codes.
var fallbackNames = map[string]string{
	"ar-ae": "Arabic/UAE",
	"ar-bh": "Arabic/Bahrain",
	"ar-dz": "Arabic/Algeria",
	"ar-eg": "Arabic/Egypt",
	"ar-iq": "Arabic/Iraq",
	"ar-jo": "Arabic/Jordan",
	"ar-kw": "Arabic/Kuwait",
	"ar-lb": "Arabic/Lebanon",
	"ar-ly": "Arabic/Libya",
	"ar-ma": "Arabic/Morocco",
	"ar-om": "Arabic/Oman",
	"ar-qa": "Arabic/Qatar",
	"ar-sa": "Arabic/Saudi Arabia",
	"ar-sy": "Arabic/Syria",
	"ar-tn": "Arabic/Tunisia",
	"ar-ye": "Arabic/Yemen",
	"bg-bg": "Bulgarian/Bulgaria",
	"ca-es": "Catalan/Spain",
	"cs-cz": "Czech/Czech Republic",
	"cy-gb": "Welsh/UK",
	"da-dk": "Danish/Denmark",
	"de-at": "German/Austria",
	"de-ch": "German/Switzerland",
	"de-de": "German/Germany",
	"de-li": "German/Liechtenstein",
	"de-lu": "German/Luxembourg",
	"el-cy": "Greek/Cyprus",
	"el-gr": "Greek/Greece",
	"en-ae": "English/UAE",
	"en-al": "English/Albania",
	"en-am": "English/Armenia",
	"en-au": "English/Australia",
	"en-az": "English/Azerbaijan",
	"en-bh": "English/Bahrain",
	"en-bn": "English/Brunei",
	"en-bw": "English/Botswana",
	"en-by": "English/Belarus",
	"en-ca": "English/Canada",
	"en-eg": "English/Egypt",
	"en-gb": "English/UK",
	"en-ge": "English/Georgia",
	"en-gu": "English/Guam",
	"en-gw": "English/Guinea-Bissau",
	"en-hk": "English/Hong Kong",
	"en-ie": "English/Ireland",
	"en-il": "English/Israel",
	"en-in": "English/India",
	"en-is": "English/Iceland",
	"en-jo": "English/Jordan",
	"en-ke": "English/Kenya",
	"en-kg": "English/Kyrgyzstan",
	"en-kw": "English/Kuwait",
	"en-kz": "English/Kazakhstan",
	"en-lb": "English/Lebanon",
	"en-lk": "English/Sri Lanka",
	"en-md": "English/Moldova",
	"en-me": "English/Montenegro",
	"en-mk": "English/North Macedonia",
	"en-mn": "English/Mongolia",
	"en-mo": "English/Macau",
	"en-mt": "English/Malta",
	"en-my": "English/Malaysia",
	"en-mz": "English/Mozambique",
	"en-ng": "English/Nigeria",
	"en-nz": "English/New Zealand",
	"en-om": "English/Oman",
	"en-ph": "English/Philippines",
	"en-qa": "English/Qatar",
	"en-sa": "English/Saudi Arabia",
	"en-sg": "English/Singapore",
	"en-tj": "English/Tajikistan",
	"en-tm": "English/Turkmenistan",
	"en-ug": "English/Uganda",
	"en-us": "English/USA",
	"en-uz": "English/Uzbekistan",
	"en-vn": "English/Vietnam",
	"en-za": "English/South Africa",
	"es-ar": "Spanish/Argentina",
	"es-bo": "Spanish/Bolivia",
	"es-cl": "Spanish/Chile",
	"es-co": "Spanish/Colombia",
	"es-cr": "Spanish/Costa Rica",
	"es-do": "Spanish/Dominican Republic",
	"es-ec": "Spanish/Ecuador",
	"es-es": "Spanish/Spain",
	"es-gt": "Spanish/Guatemala",
	"es-hn": "Spanish/Honduras",
	"es-mx": "Spanish/Mexico",
	"es-ni": "Spanish/Nicaragua",
	"es-pa": "Spanish/Panama",
	"es-pe": "Spanish/Peru",
	"es-py": "Spanish/Paraguay",
	"es-sv": "Spanish/El Salvador",
	"es-us": "Spanish/USA",
	"es-uy": "Spanish/Uruguay",
	"es-ve": "Spanish/Venezuela",
	"et-ee": "Estonian/Estonia",
	"eu-es": "Basque/Spain",
	"fi-fi": "Finnish/Finland",
	"fr-be": "French/Belgium",
	"fr-ca": "French/Canada",
	"fr-cf": "French/Central African Republic",
	"fr-ch": "French/Switzerland",
	"fr-ci": "French/Côte d'Ivoire",
	"fr-cm": "French/Cameroon",
	"fr-fr": "French/France",
	"fr-gn": "French/Guinea",
	"fr-gq": "French/Equatorial Guinea",
	"fr-lu": "French/Luxembourg",
	"fr-ma": "French/Morocco",
	"fr-mg": "French/Madagascar",
	"fr-ml": "French/Mali",
	"fr-mu": "French/Mauritius",
	"fr-ne": "French/Niger",
	"fr-sn": "French/Senegal",
	"fr-tn": "French/Tunisia",
	"ga-ie": "Irish/Ireland",
	"gl-es": "Galician/Spain",
	"he-il": "Hebrew/Israel",
	"hr-hr": "Croatian/Croatia",
	"hu-hu": "Hungarian/Hungary",
	"id-id": "Indonesian/Indonesia",
	"is-is": "Icelandic/Iceland",
	"it-ch": "Italian/Switzerland",
	"it-it": "Italian/Italy",
	"ja-jp": "Japanese/Japan",
	"ko-kr": "Korean/South Korea",
	"lt-lt": "Lithuanian/Lithuania",
	"lv-lv": "Latvian/Latvia",
	"ms-my": "Malay/Malaysia",
	"mt-mt": "Maltese/Malta",
	"nb-no": "Norwegian Bokmål/Norway",
	"nn-no": "Norwegian Nynorsk/Norway",
	"no-no": "Norwegian/Norway",
	"nl-be": "Dutch/Belgium",
	"nl-nl": "Dutch/Netherlands",
	"pl-pl": "Polish/Poland",
	"pt-ao": "Portuguese/Angola",
	"pt-br": "Portuguese/Brazil",
	"pt-mz": "Portuguese/Mozambique",
	"pt-pt": "Portuguese/Portugal",
	"ro-md": "Romanian/Moldova",
	"ro-ro": "Romanian/Romania",
	"ru-ru": "Russian/Russia",
	"sk-sk": "Slovak/Slovakia",
	"sl-si": "Slovenian/Slovenia",
	"sr-rs": "Serbian/Serbia",
	"sv-se": "Swedish/Sweden",
	"th-th": "Thai/Thailand",
	"tr-tr": "Turkish/Turkey",
	"uk-ua": "Ukrainian/Ukraine",
	"vi-vn": "Vietnamese/Vietnam",
	"zh-cn": "Chinese/China",
	"zh-hk": "Chinese/Hong Kong",
	"zh-mo": "Chinese/Macau",
	"zh-sg": "Chinese/Singapore",
	"zh-tw": "Chinese/Taiwan",
}

// FallbackName returns a human-readable "Language/Region" label for code,
// and ok=false when code isn't in the static table. Callers should fall
// back to the bare code itself, not treat this as an error.
func FallbackName(code string) (name string, ok bool) {
	name, ok = fallbackNames[code]
	return name, ok
}
