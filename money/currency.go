package money

import (
	"strings"

	"github.com/wyfcoding/quant/xerrors"
)

// Currency ISO 4217 币种代码.
type Currency uint8

const (
	AUD Currency = iota
	CAD
	CHF
	CNH
	CZK
	DKK
	EUR
	HKD
	HUF
	JPY
	MXN
	NOK
	NZD
	PLN
	SEK
	SGD
	USD
	ZAR
)

var currencyCodes = [...]string{
	"AUD", "CAD", "CHF", "CNH", "CZK", "DKK", "EUR", "HKD", "HUF",
	"JPY", "MXN", "NOK", "NZD", "PLN", "SEK", "SGD", "USD", "ZAR",
}

// String 返回币种代码.
func (c Currency) String() string {
	if int(c) < len(currencyCodes) {
		return currencyCodes[c]
	}
	return "UNKNOWN"
}

// ParseCurrency 解析币种代码，忽略大小写.
func ParseCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for i, c := range currencyCodes {
		if c == code {
			return Currency(i), nil
		}
	}
	return 0, xerrors.Derive(xerrors.ErrInvalidCurrency, "code=%q", code)
}
