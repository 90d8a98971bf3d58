package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	consumptionapp "aquasmart-portal/internal/consumption/application"
)

// ConsumptionCSV renders the bucketed history as CSV:
//
//	Historial de Consumo AquaSmart
//	Periodo: <start> - <end>
//	Fecha,Flujo
//	<key>,<sum with two decimals>
func ConsumptionCSV(history consumptionapp.History) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"Historial de Consumo AquaSmart"},
		{"Periodo: " + history.Start + " - " + history.End},
		{"Fecha", "Flujo"},
	}
	for _, bucket := range history.Buckets {
		records = append(records, []string{bucket.Key, strconv.FormatFloat(bucket.Sum, 'f', 2, 64)})
	}
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
