package docstore

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// Los adaptadores devuelven valores heterogéneos: Redis todo como string,
// PostgreSQL (JSONB) números como float64. Estas funciones normalizan la lectura.

func fieldString(f repository.Fields, key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func fieldInt(f repository.Fields, key string) int64 {
	switch v := f[key].(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			// valores heredados guardados como "50.0"
			fl, ferr := strconv.ParseFloat(v, 64)
			if ferr != nil {
				return 0
			}
			return int64(fl)
		}
		return n
	}
	return 0
}

func fieldDecimal(f repository.Fields, key string) decimal.Decimal {
	switch v := f[key].(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int64:
		return decimal.NewFromInt(v)
	case json.Number:
		d, _ := decimal.NewFromString(v.String())
		return d
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	}
	return decimal.Zero
}

func fieldTime(f repository.Fields, key string) time.Time {
	switch v := f[key].(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}
		}
		return t
	}
	return time.Time{}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
