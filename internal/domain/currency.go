package domain

import (
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultCurrency is used whenever a country or locale cannot be resolved.
const DefaultCurrency = "USD"

var countryCurrencies = map[string]string{
	"nigeria":        "NGN",
	"ghana":          "GHS",
	"kenya":          "KES",
	"south africa":   "ZAR",
	"united states":  "USD",
	"united kingdom": "GBP",
	"canada":         "CAD",
	"australia":      "AUD",
	"germany":        "EUR",
	"france":         "EUR",
	"italy":          "EUR",
	"spain":          "EUR",
}

// usdRates holds units of local currency per US dollar.
var usdRates = map[string]float64{
	"NGN": 800,
	"GHS": 12,
	"KES": 150,
	"ZAR": 18,
	"USD": 1,
	"GBP": 0.8,
	"CAD": 1.35,
	"AUD": 1.5,
	"EUR": 0.85,
}

var currencySymbols = map[string]string{
	"NGN": "₦",
	"GHS": "GH₵",
	"KES": "KSh",
	"ZAR": "R",
	"USD": "$",
	"GBP": "£",
	"CAD": "CA$",
	"AUD": "A$",
	"EUR": "€",
}

// SupportedCurrency reports whether code has a conversion rate.
func SupportedCurrency(code string) bool {
	_, ok := usdRates[strings.ToUpper(code)]
	return ok
}

// ResolveCurrency maps a country name, ISO region code or locale tag
// (en-NG, en_GB) to a supported currency code. Unknown input yields USD.
func ResolveCurrency(countryOrLocale string) string {
	key := strings.ToLower(strings.TrimSpace(countryOrLocale))
	if key == "" {
		return DefaultCurrency
	}
	if code, ok := countryCurrencies[key]; ok {
		return code
	}

	var region language.Region
	if r, err := language.ParseRegion(key); err == nil && len(key) <= 3 {
		region = r
	} else {
		tag, err := language.Parse(strings.ReplaceAll(key, "_", "-"))
		if err != nil {
			return DefaultCurrency
		}
		r, conf := tag.Region()
		if conf == language.No {
			return DefaultCurrency
		}
		region = r
	}

	unit, ok := currency.FromRegion(region)
	if !ok {
		return DefaultCurrency
	}
	if code := unit.String(); SupportedCurrency(code) {
		return code
	}
	return DefaultCurrency
}

// Convert turns a USD price into whole units of the local currency.
// Unknown codes convert at parity.
func Convert(usdAmount float64, currencyCode string) float64 {
	rate, ok := usdRates[strings.ToUpper(currencyCode)]
	if !ok {
		rate = 1
	}
	return math.Round(usdAmount * rate)
}

func minorScale(currencyCode string) int {
	unit, err := currency.ParseISO(strings.ToUpper(currencyCode))
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale
}

// ToMinorUnits converts a local amount to the smallest currency unit the
// payment gateway expects (kobo, pesewas, cents).
func ToMinorUnits(amount float64, currencyCode string) int64 {
	return int64(math.Round(amount * math.Pow10(minorScale(currencyCode))))
}

// FormatAmount renders amount with its currency symbol and digit grouping.
func FormatAmount(amount float64, currencyCode string) string {
	code := strings.ToUpper(currencyCode)
	symbol, ok := currencySymbols[code]
	if !ok {
		symbol = code + " "
	}
	p := message.NewPrinter(language.English)
	return symbol + p.Sprint(number.Decimal(amount, number.Scale(minorScale(code))))
}
