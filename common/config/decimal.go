package config

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var decimalEnvMap = make(map[string]decimal.Decimal)

// GetDecimal returns a setting in decimal.
func GetDecimal(key string, def ...decimal.Decimal) decimal.Decimal {
	envMapMutex.RLock()
	if decVal, exists := decimalEnvMap[key]; exists {
		envMapMutex.RUnlock()
		return decVal
	}

	strVal, strExists := strEnvMap[key]
	if !strExists {
		envMapMutex.RUnlock()
		if len(def) == 0 {
			panic(fmt.Errorf("setting %s does not exist", key))
		}
		return def[0]
	}
	envMapMutex.RUnlock()

	if result, err := decimal.NewFromString(strVal); err != nil {
		panic(fmt.Errorf("failed to parse decimal for setting %s, err=%w", key, err))
	} else {
		envMapMutex.Lock()
		decimalEnvMap[key] = result
		envMapMutex.Unlock()
	}

	return decimalEnvMap[key]
}
