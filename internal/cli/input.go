package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"paymentplan/internal/schedule"
)

// LoadParams reads calculator params from a TOML file:
//
//	principal = "100000"
//	down_payment = "20000"
//	monthly_interest_rate = "1.5"
//	installments = 10
//	start_date = "2025-01-01"
//	currency = "TRY"
//
//	[[interim]]
//	month = 5
//	amount = "10000"
func LoadParams(path string) (schedule.Params, error) {
	var p schedule.Params
	md, err := toml.DecodeFile(path, &p)
	if err != nil {
		return schedule.Params{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return schedule.Params{}, fmt.Errorf("decode %s: unknown keys %v", path, undecoded)
	}
	return p, nil
}
