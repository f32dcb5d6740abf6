package enums

// Currency is the ISO 4217 code quoted on price breakdowns. All prices in one
// deployment share a single currency.
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
)

var currencies = []Currency{CurrencyEUR, CurrencyUSD, CurrencyGBP}

func (v Currency) String() string { return string(v) }

func (v Currency) IsValid() bool { return member(currencies, v) }

func ParseCurrency(value string) (Currency, error) {
	return parse(currencies, "currency", value)
}
