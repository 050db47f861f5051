package inventory

import (
	"fmt"
	"strconv"
	"strings"
)

// FirstSequence primer valor de toda secuencia (…001).
const FirstSequence int64 = 1

// FormatID arma el ID legible: prefijo + número con relleno a 3 dígitos.
func FormatID(prefix string, n int64) string {
	return fmt.Sprintf("%s%03d", prefix, n)
}

// ParseIDSuffix extrae el número de un ID con el prefijo dado.
// El prefijo se compara sin distinguir mayúsculas (cat001 heredado cuenta como CAT001).
func ParseIDSuffix(prefix, id string) (int64, bool) {
	if len(id) <= len(prefix) || !strings.EqualFold(id[:len(prefix)], prefix) {
		return 0, false
	}
	suffix := id[len(prefix):]
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextIDFromExisting estrategia por escaneo: máximo sufijo + 1, ignorando IDs malformados.
// Sin IDs válidos devuelve el primero de la secuencia.
func NextIDFromExisting(prefix string, ids []string) string {
	var max int64
	for _, id := range ids {
		if n, ok := ParseIDSuffix(prefix, id); ok && n > max {
			max = n
		}
	}
	return FormatID(prefix, max+1)
}
